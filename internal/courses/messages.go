package courses

const (
	msgChooseCourse = "🧑‍💻 <b>Kurslar haqida ma'lumot</b>\n\nQaysi kurs haqida ma'lumot olishni xohlaysiz?"
	msgCourseInfo   = "📚 <b>%s</b>\n\n⏱ Davomiyligi: %s\n💰 %s\n\nTarifni tanlang:"
	msgTariffInfo   = "📋 <b>%s tarif</b>\n\n" +
		"⏱ O'qish muddati: %s\n" +
		"👨‍🏫 Support mentor: %s\n" +
		"📚 Qo'shimcha darslar: %s\n" +
		"💼 Amaliyot: %s\n" +
		"🎯 Ish bilan ta'minlash: %s\n\n" +
		"Sizga mos tarif va aniq narxlar bo'yicha menejerimiz qo'ng'iroq qilishi uchun telefon raqamingizni qoldiring:"
)

const (
	msgShareContact = "📞 Kontaktni ulashish"
	msgBadPhone     = "❗ Iltimos, to'g'ri telefon raqam kiriting.\nMisol: +998901234567 yoki 998901234567\n\nTelefon raqamingizni qoldirmasangiz, biz siz bilan bog'lana olmaymiz."
	msgSaveFailed   = "❗ Telefon raqamni saqlashda xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	msgAccepted     = "✅ Rahmat! Telefon raqamingiz qabul qilindi.\n\nMenejerimiz tez orada sizga qo'ng'iroq qilib, mos tarif va aniq narxlar haqida ma'lumot beradi."
	msgIncomplete   = "❗ Ma'lumot to'liq emas. Iltimos, kursni qaytadan tanlang."
)
