package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAge(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"16", 16, true},
		{"100", 100, true},
		{" 42 ", 42, true},
		{"15", 0, false},
		{"101", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"4 2", 0, false},
	}
	for _, tt := range tests {
		got, ok := Age(tt.in)
		assert.Equal(t, tt.ok, ok, "Age(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Age(%q)", tt.in)
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+998901234567", "+998901234567", true},
		{"998901234567", "998901234567", true},
		{"+998 (90) 123-45-67", "+998901234567", true},
		{"12345", "", false},
		{"+0123456789", "", false},
		{"+1234567890123456", "", false},
		{"phone", "", false},
	}
	for _, tt := range tests {
		got, ok := Phone(tt.in)
		assert.Equal(t, tt.ok, ok, "Phone(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Phone(%q)", tt.in)
	}
}

func TestName(t *testing.T) {
	valid := []string{"Ali Valiyev", "  Ali  ", "O'tkir Jo'rayev", "Анна-Мария", "Ulugbek"}
	for _, s := range valid {
		assert.True(t, Name(s), s)
	}
	invalid := []string{"A", "!!!", "", "   ", "''", "Ali <script>", strings.Repeat("a", 101)}
	for _, s := range invalid {
		assert.False(t, Name(s), s)
	}
}

func TestMembership(t *testing.T) {
	assert.True(t, Vacancy("Mentor"))
	assert.False(t, Vacancy("mentor"))
	assert.True(t, Subject("Dasturlash"))
	assert.False(t, Subject("Matematika"))
}

func TestFindPhone(t *testing.T) {
	got, ok := FindPhone("Salom, kurs narxi qancha? Tel: +998 90 123-45-67")
	assert.True(t, ok)
	assert.Equal(t, "+998901234567", got)

	_, ok = FindPhone("Kurs 3 oy davom etadimi?")
	assert.False(t, ok)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Mentor", Capitalize(" mENTOR "))
	assert.Equal(t, "", Capitalize("  "))
}
