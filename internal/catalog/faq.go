package catalog

import (
	"fmt"
	"html"
	"strings"
)

const pricesText = "💰 <b>Narxlar</b>\n\n" +
	"Kurslar narxlari:\n" +
	"• SMM: Narx menejer orqali\n" +
	"• Mobilografiya: Narx menejer orqali\n" +
	"• Computer Science: Oyiga 800 000 so'm\n" +
	"• Python Fullstack dasturlash: Oyiga 800 000 so'm\n\n" +
	"Aniq narxlar va to'lov shartlari bo'yicha menejerimiz bilan bog'laning."

const addressText = "📍 <b>Manzil</b>\n\n" +
	"Geeks Andijan o'quv markazi\n" +
	"Andijan shahri\n\n" +
	"Aniq manzil va filiallar haqida ma'lumot olish uchun menejerimiz bilan bog'laning."

const phoneText = "📞 <b>Kontaktlar</b>\n\n" +
	"Telefon: Menejer orqali\n" +
	"Telegram: @geeksandijan\n\n" +
	"Savollaringiz bo'lsa, '❓ Savol berish (Support)' tugmasini bosing."

// Contacts is the reply to the contacts menu button.
const Contacts = "📞 <b>Kontaktlar va Manzil</b>\n\n" +
	"📍 <b>Manzil:</b>\n" +
	"Geeks Andijan o'quv markazi\n" +
	"Andijan shahri\n\n" +
	"📞 <b>Telefon:</b>\n" +
	"Menejer orqali\n\n" +
	"💬 <b>Telegram:</b>\n" +
	"@geeksandijan\n\n" +
	"Savollaringiz bo'lsa, '❓ Savol berish (Support)' tugmasini bosing."

type keyword struct {
	word   string
	answer string
}

// checked in order, first substring match wins
var keywords = []keyword{
	{"narx", pricesText},
	{"qancha turadi", pricesText},
	{"manzil", addressText},
	{"qayerda joylashgan", addressText},
	{"aloqa", phoneText},
	{"telefon", phoneText},
}

type courseQA struct {
	question string
	answer   string
}

var courseFAQ = buildCourseFAQ()

func buildCourseFAQ() []courseQA {
	seen := make(map[string]bool)
	var out []courseQA
	for _, c := range courses {
		for _, qa := range c.FAQ {
			key := strings.ToLower(strings.TrimSpace(qa.Question))
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, courseQA{
				question: key,
				answer:   fmt.Sprintf("📚 <b>%s</b>\n\n❔ %s\n\n%s", html.EscapeString(c.Name), qa.Question, qa.Answer),
			})
		}
	}
	return out
}

// Answer looks for a canned answer to free text: general keywords first,
// then the course questions.
func Answer(text string) (string, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", false
	}
	for _, k := range keywords {
		if strings.Contains(text, k.word) {
			return k.answer, true
		}
	}
	for _, qa := range courseFAQ {
		if strings.Contains(text, qa.question) {
			return qa.answer, true
		}
	}
	return "", false
}
