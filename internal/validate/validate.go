// Package validate holds the pure field validators used by the conversation flows.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Vacancies a job application can target.
const (
	VacancySeller  = "Sotuvchi"
	VacancyAdmin   = "Admin"
	VacancyMentor  = "Mentor"
	VacancySupport = "Support"
)

// Vacancies lists the vacancies in presentation order.
var Vacancies = []string{VacancySeller, VacancyAdmin, VacancyMentor, VacancySupport}

// Subjects lists the teaching subjects a mentor can pick.
var Subjects = []string{"SMM", "Mobilografiya", "Dasturlash"}

const (
	minAge = 16
	maxAge = 100
)

var (
	nameRe       = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_\s'\-]+$`)
	phoneRe      = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	phoneNoiseRe = regexp.MustCompile(`[\s\-\(\)]`)
	// loose candidates inside free text; validated by Phone afterwards
	phoneCandidateRe = regexp.MustCompile(`\+?\d{7,15}`)
)

// Name reports whether s is a plausible person name.
func Name(s string) bool {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 100 || !nameRe.MatchString(s) {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// Age parses s as an age in [16,100].
func Age(s string) (int, bool) {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || age < minAge || age > maxAge {
		return 0, false
	}
	return age, true
}

// Phone strips spaces, hyphens and parentheses from s and validates the rest.
// The cleaned number is returned on success.
func Phone(s string) (string, bool) {
	cleaned := phoneNoiseRe.ReplaceAllString(strings.TrimSpace(s), "")
	if !phoneRe.MatchString(cleaned) {
		return "", false
	}
	return cleaned, true
}

// FindPhone returns the first valid phone number embedded in free text.
func FindPhone(text string) (string, bool) {
	compact := phoneNoiseRe.ReplaceAllString(text, "")
	for _, candidate := range phoneCandidateRe.FindAllString(compact, -1) {
		if phone, ok := Phone(candidate); ok {
			return phone, true
		}
	}
	return "", false
}

// Vacancy reports whether s is one of the known vacancies.
func Vacancy(s string) bool { return contains(Vacancies, s) }

// Subject reports whether s is one of the mentor subjects.
func Subject(s string) bool { return contains(Subjects, s) }

// Capitalize upper-cases the first rune and lower-cases the rest, the way
// admins are expected to type vacancy filters ("mentor" -> "Mentor").
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
