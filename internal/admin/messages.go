package admin

const (
	msgLastHeader    = "📋 Oxirgi arizalar"
	msgLastLine      = "👤 %s | 📞 %s | 🏢 %s | 📚 %s | 💼 %s | 🏭 %s\n\n"
	msgNoneFor       = "%s bo'yicha ariza topilmadi."
	msgNone          = "Arizalar topilmadi."
	msgTicketsHeader = "📨 Oxirgi support so'rovlar:\n\n"
	msgTicketLine    = "🎫 Ticket #%d\n👤 User: %s (ID: %d)\n📂 Kategoriya: %s\n❓ Savol: %s\n⏰ %s\n\n"
	msgNoTickets     = "📨 Support so'rovlar topilmadi."
	msgLeadsHeader   = "🧑‍💻 Oxirgi kurs so'rovlari:\n\n"
	msgLeadLine      = "👤 %s (ID: %d)\n📚 %s | %s\n📞 %s\n⏰ %s\n\n"
	msgNoLeads       = "🧑‍💻 Kurs so'rovlari topilmadi."
	msgAnswerUsage   = "❌ Format: /answer <user_id> <javob matni>\nMisol: /answer 123456789 Salom! Sizning savolingizga javob..."
	msgAnswerBadID   = "❌ user_id raqam bo'lishi kerak."
	msgAnswerSent    = "✅ Javob foydalanuvchiga (ID: %d) yuborildi."
	msgAnswerFailed  = "❌ Xatolik: Foydalanuvchiga javob yuborib bo'lmadi.\nEhtimol foydalanuvchi botni bloklagan yoki ID noto'g'ri."
	msgQueryFailed   = "❌ Xatolik: ma'lumotlarni olishda muammo."
	msgAnswerPrefix  = "📨 <b>Geeks Andijan javobi:</b>\n\n"
)

const (
	generalScope   = "Umumiy"
	questionCutoff = 50
	dateLayout     = "2006-01-02 15:04"
)
