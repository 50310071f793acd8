package catalog

// Reply keyboard labels. Menu buttons work from any step.
const (
	ButtonApply    = "📝 Ishga ariza topshirish"
	ButtonCourses  = "🧑‍💻 Kurslar haqida ma'lumot"
	ButtonSupport  = "❓ Savol berish (Support)"
	ButtonContacts = "📞 Kontaktlar / Manzil"
	ButtonRestart  = "🔄 Botni qayta ishga tushirish"

	ButtonAdminLast   = "📋 Oxirgi arizalar"
	ButtonAdminExport = "📤 Export"
)

// MainMenu is the reply keyboard layout shown after /start.
func MainMenu() [][]string {
	return [][]string{
		{ButtonApply},
		{ButtonCourses},
		{ButtonSupport},
		{ButtonContacts},
	}
}

// AdminMenu is the extra keyboard shown to admins.
func AdminMenu() [][]string {
	return [][]string{{ButtonAdminLast, ButtonAdminExport}}
}

// Hint is sent when text arrives outside any flow and matches no FAQ entry.
const Hint = "❓ Nima yordam bera olaman?\n\n" +
	"Quyidagilardan birini tanlang:\n" +
	"• " + ButtonApply + "\n" +
	"• " + ButtonCourses + "\n" +
	"• " + ButtonSupport + "\n" +
	"• " + ButtonContacts + "\n\n" +
	"Yoki /start buyrug'ini bosing."

// Greeting opens every /start.
const Greeting = "👋 Assalomu alaykum!\n" +
	"Men orqali Geeks Andijan o'quv markaziga ish uchun ariza topshirishingiz mumkin.\n\n" +
	"Vakansiyani tanlang yoki pastdagi tugmani bosing:"

// Apology is sent when handling an update failed unexpectedly.
const Apology = "⚠️ Kechirasiz, xatolik yuz berdi. Iltimos, birozdan so'ng qayta urinib ko'ring yoki /start bosing."
