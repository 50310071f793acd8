package form

const (
	msgChooseVacancy = "Vakansiyani tanlang:"
	msgVacancyChosen = "🏢 Siz tanladingiz: %s\n\nEndi ism-familiyangizni kiriting:"
	msgAskAge        = "📅 Yoshni kiriting:"
	msgAskPhone      = "📞 Telefon raqamingizni yuboring:"
	msgAskSubject    = "📚 Qaysi yo'nalishda dars bera olasiz?"
	msgAskExperience = "💼 Necha yillik tajribangiz bor?"
	msgAskWorkplace  = "🏭 Oldin qayerda ishlagansiz?"
	msgAskPhoto      = "🖼 Iltimos, o'z rasmingizni yuboring:"
	msgAskCV         = "📄 Agar sizda CV (Rezyume) fayl bo'lsa, yuboring (PDF/DOCX).\nAks holda 'Yo'q' deb yozing."
	msgBadName       = "❗ Iltimos, to'g'ri ism-familiya kiriting (2-100 belgi)."
	msgBadAge        = "❗ Iltimos, to'g'ri yosh kiriting (16-100)."
	msgBadPhone      = "❗ Iltimos, to'g'ri telefon raqam kiriting.\nMisol: +998901234567 yoki 998901234567"
	msgBadSubject    = "❗ Iltimos, yo'nalishni tugmalardan tanlang."
	msgBadVacancy    = "❗ Iltimos, vakansiyani tugmalardan tanlang."
	msgEmptyText     = "❗ Iltimos, javobni matn ko'rinishida yozing."
	msgBadPhoto      = "❗ Iltimos, faqat rasm yuboring."
	msgBadCV         = "❗ Iltimos, CV yuboring yoki 'Yo'q' deb yozing."
	msgIncomplete    = "❗ Ariza to'liq emas. Iltimos, /start bilan qaytadan boshlang."
	msgSaveFailed    = "❗ Arizani saqlashda xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	msgAccepted      = "✅ Rahmat! Arizangiz qabul qilindi. Tez orada siz bilan bog'lanamiz."
)

// DefaultSkipTokens are the answers that decline the CV upload.
var DefaultSkipTokens = []string{"yo'q", "yoq", "yo‘q", "yo’q", "yoʻq", "no", "нет"}
