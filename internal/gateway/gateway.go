// Package gateway is the outbound side of the messaging platform: the flows
// describe replies as Message values and a Gateway delivers them.
package gateway

import "context"

// Gateway delivers one message to a chat.
type Gateway interface {
	Send(ctx context.Context, chatID int64, msg Message) error
}

// Message is a reply. Text is sent first; an Attachment, when set, is sent
// with Text as its caption.
type Message struct {
	Text       string
	Keyboard   *Keyboard
	Attachment *Attachment
}

// Keyboard describes reply markup. At most one of Reply, Inline,
// RequestContact and Remove is expected to be set.
type Keyboard struct {
	Reply  [][]string
	Inline [][]Button
	// RequestContact renders a single reply button that shares the phone number.
	RequestContact string
	Remove         bool
	OneTime        bool
}

// Button is an inline button. Key routes the press, Value is its argument.
type Button struct {
	Text  string
	Key   string
	Value string
}

// AttachmentKind selects how an attachment is uploaded.
type AttachmentKind uint8

const (
	AttachPhoto AttachmentKind = iota + 1
	AttachDocument
	AttachVoice
)

func (k AttachmentKind) String() string {
	switch k {
	case AttachPhoto:
		return "photo"
	case AttachDocument:
		return "document"
	case AttachVoice:
		return "voice"
	}
	return "unknown"
}

// Attachment references an already uploaded file by FileID, or carries
// fresh bytes in File.
type Attachment struct {
	Kind   AttachmentKind
	FileID string
	File   *File
}

// File is an in-memory upload.
type File struct {
	Name string
	Data []byte
}

// Text is a shorthand for a plain reply.
func Text(s string) Message { return Message{Text: s} }

// WithInline returns a copy of m with an inline keyboard.
func (m Message) WithInline(rows ...[]Button) Message {
	m.Keyboard = &Keyboard{Inline: rows}
	return m
}

// WithReply returns a copy of m with a resizable reply keyboard.
func (m Message) WithReply(rows ...[]string) Message {
	m.Keyboard = &Keyboard{Reply: rows}
	return m
}

// Column lays buttons out one per row.
func Column(buttons ...Button) [][]Button {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return rows
}
