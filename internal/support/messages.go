package support

const (
	msgChooseCategory = "❓ Savol berish\n\nQaysi kategoriyaga tegishli savolingizni tanlang:"
	msgAskQuestion    = "📂 Kategoriya: %s\n\nSavolingizni yozing yoki ovozli xabar sifatida yuboring:"
	msgAskPhone       = "📞 Agar tezroq bog'lanishimizni istasangiz, telefon raqamingizni ham yozib qoldiring:\n(Yoki 'O'tkazib yuborish' deb yozing)"
	msgVoiceAccepted  = "🎤 Ovozli xabaringiz qabul qilindi.\n\n" + msgAskPhone
	msgShortQuestion  = "❗ Iltimos, savolingizni batafsilroq yozing (kamida 5 belgi)."
	msgBadQuestion    = "❗ Iltimos, savolingizni matn yoki ovozli xabar sifatida yuboring."
	msgBadPhone       = "❗ Iltimos, to'g'ri telefon raqam kiriting yoki 'O'tkazib yuborish' deb yozing.\nMisol: +998901234567"
	msgIncomplete     = "❗ Savol to'liq emas. Iltimos, /start bilan qaytadan boshlang."
	msgSaveFailed     = "❗ Savolni saqlashda xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	msgAccepted       = "✅ Savolingiz qabul qilindi. Operatorlar tez orada siz bilan bog'lanishadi."
	msgAcceptedNight  = "✅ Savolingiz qabul qilindi.\n\n⚠️ Savolingiz ish vaqtidan tashqarida qabul qilindi. Operatorlar ertasi kuni javob berishadi."
	msgPhoneNoted     = "📞 Telefon raqamingiz qayd etildi: %s\nMenejerimiz sizga qo'ng'iroq qilishi mumkin."

	voiceQuestion = "Ovozli xabar"
	minQuestion   = 5
)

// DefaultSkipTokens decline leaving a phone number.
var DefaultSkipTokens = []string{"o'tkazib yuborish", "otkazib yuborish", "skip", "o'tkaz"}

// Category is a support topic.
type Category struct {
	Key   string
	Label string
}

// Categories lists the topics in presentation order.
var Categories = []Category{
	{Key: "courses", Label: "📚 Kurslar"},
	{Key: "payment", Label: "💳 To'lov"},
	{Key: "location", Label: "📍 Manzil"},
	{Key: "other", Label: "🔄 Boshqa"},
}

func categoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
