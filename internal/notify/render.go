package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/geeksandijan/hrbot/core/telegram/format"
	"github.com/geeksandijan/hrbot/internal/gateway"
	"github.com/geeksandijan/hrbot/internal/storage"
)

// Note kinds double as routing keys.
const (
	KindApplication = "application"
	KindTicket      = "ticket"
	KindLead        = "lead"
)

// Note is a staff notification: a text followed by optional attachments.
type Note struct {
	Kind        string
	Text        string
	Attachments []gateway.Attachment
}

// Messages expands the note into the messages sent to each recipient.
func (n Note) Messages() []gateway.Message {
	out := make([]gateway.Message, 0, 1+len(n.Attachments))
	out = append(out, gateway.Text(n.Text))
	for i := range n.Attachments {
		a := n.Attachments[i]
		out = append(out, gateway.Message{Attachment: &a})
	}
	return out
}

var esc = html.EscapeString

// ApplicationNote renders a job application in the fixed staff order.
func ApplicationNote(a storage.Application) Note {
	var b strings.Builder
	b.WriteString("📥 <b>Yangi ariza</b>\n\n")
	fmt.Fprintf(&b, "👤 Ism: %s\n", esc(a.Name))
	fmt.Fprintf(&b, "📅 Yosh: %d\n", a.Age)
	fmt.Fprintf(&b, "📞 Tel: %s\n", esc(a.Phone))
	fmt.Fprintf(&b, "🏢 Vakansiya: %s\n", esc(a.Vacancy))
	if a.Mentor() {
		fmt.Fprintf(&b, "📚 Yo'nalish: %s\n", esc(format.DerefString(a.Subject, "-")))
		fmt.Fprintf(&b, "💼 Tajriba: %s\n", esc(a.Experience))
	} else {
		fmt.Fprintf(&b, "💼 Tajriba: %s\n", esc(a.Experience))
		fmt.Fprintf(&b, "🏭 Ish joyi: %s\n", esc(format.DerefString(a.Workplace, "-")))
	}
	fmt.Fprintf(&b, "🔗 Username: %s", format.Handle(a.Username))

	n := Note{Kind: KindApplication, Text: b.String()}
	if a.PhotoID != "" {
		n.Attachments = append(n.Attachments, gateway.Attachment{Kind: gateway.AttachPhoto, FileID: a.PhotoID})
	}
	if cv := format.DerefString(a.CVFileID, ""); cv != "" {
		n.Attachments = append(n.Attachments, gateway.Attachment{Kind: gateway.AttachDocument, FileID: cv})
	}
	return n
}

// TicketNote renders a support ticket. night marks tickets received outside
// working hours.
func TicketNote(t storage.Ticket, night bool) Note {
	var b strings.Builder
	if night {
		b.WriteString("[Night queue] ")
	}
	fmt.Fprintf(&b, "🎫 <b>Support Ticket #%d</b>\n\n", t.ID)
	fmt.Fprintf(&b, "👤 User: %s (ID: %d)\n", format.Handle(format.DerefString(t.Username, "")), t.UserID)
	fmt.Fprintf(&b, "📂 Kategoriya: %s\n", esc(t.Category))
	if t.Phone != nil {
		fmt.Fprintf(&b, "📞 Telefon: %s\n", esc(*t.Phone))
	} else {
		b.WriteString("📞 Telefon: ko'rsatilmagan\n")
	}
	fmt.Fprintf(&b, "\n❓ Savol:\n%s", esc(t.Question))
	if t.VoiceID != nil {
		b.WriteString("\n\n🎤 Ovozli xabar ilova qilindi")
	}
	fmt.Fprintf(&b, "\n\n↩️ Javob: <code>/answer %d</code> matn", t.UserID)

	n := Note{Kind: KindTicket, Text: b.String()}
	if t.VoiceID != nil {
		n.Attachments = append(n.Attachments, gateway.Attachment{Kind: gateway.AttachVoice, FileID: *t.VoiceID})
	}
	return n
}

// LeadNote renders a course lead.
func LeadNote(l storage.Lead) Note {
	var b strings.Builder
	b.WriteString("📞 <b>Yangi kurs lead</b>\n\n")
	fmt.Fprintf(&b, "👤 User: %s (ID: %d)\n", format.Handle(format.DerefString(l.Username, "")), l.UserID)
	fmt.Fprintf(&b, "📚 Kurs: %s\n", esc(l.Course))
	fmt.Fprintf(&b, "📋 Tarif: %s\n", esc(l.Tariff))
	fmt.Fprintf(&b, "📞 Telefon: %s", esc(l.Phone))
	return Note{Kind: KindLead, Text: b.String()}
}
