// Package event models inbound updates as a closed set of payload kinds.
package event

import "strings"

// Event is one inbound update addressed to a conversation identity.
type Event struct {
	// Identity is the conversant, the Telegram user id.
	Identity int64
	// ChatID is where replies go. It differs from Identity in groups.
	ChatID   int64
	Username string
	UpdateID int
	Payload  Payload
}

// Payload is implemented only by the types in this package.
type Payload interface {
	Kind() string
	isPayload()
}

// Text is a plain text message. Commands arrive as Text too.
type Text struct{ Body string }

// Photo carries the file id of the largest photo size.
type Photo struct{ FileID string }

// Document is an uploaded file.
type Document struct {
	FileID string
	Name   string
}

// Voice is a voice note.
type Voice struct{ FileID string }

// Contact is a shared phone contact.
type Contact struct {
	Phone  string
	UserID int64
}

// Button is an inline keyboard press. Key selects the handler, Value is its argument.
type Button struct {
	Key   string
	Value string
}

// Unsupported covers stickers, videos and everything else the flows ignore.
type Unsupported struct{ What string }

func (Text) Kind() string        { return "text" }
func (Photo) Kind() string       { return "photo" }
func (Document) Kind() string    { return "document" }
func (Voice) Kind() string       { return "voice" }
func (Contact) Kind() string     { return "contact" }
func (Button) Kind() string      { return "button" }
func (Unsupported) Kind() string { return "unsupported" }

func (Text) isPayload()        {}
func (Photo) isPayload()       {}
func (Document) isPayload()    {}
func (Voice) isPayload()       {}
func (Contact) isPayload()     {}
func (Button) isPayload()      {}
func (Unsupported) isPayload() {}

// Command splits a "/name@bot args" text into its lowercase name and the
// trimmed argument string. ok is false for non-command payloads.
func (e Event) Command() (name, args string, ok bool) {
	t, isText := e.Payload.(Text)
	if !isText {
		return "", "", false
	}
	body := strings.TrimSpace(t.Body)
	if !strings.HasPrefix(body, "/") || len(body) == 1 {
		return "", "", false
	}
	head, rest, _ := strings.Cut(body[1:], " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(rest), head != ""
}

// TextBody returns the trimmed text of a Text payload.
func (e Event) TextBody() (string, bool) {
	t, ok := e.Payload.(Text)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(t.Body), true
}
