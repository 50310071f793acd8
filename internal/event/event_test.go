package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		body       string
		name, args string
		ok         bool
	}{
		{"/start", "start", "", true},
		{"/Last@hr_bot  mentor ", "last", "mentor", true},
		{"/answer 42 Salom dunyo", "answer", "42 Salom dunyo", true},
		{"/", "", "", false},
		{"/@bot", "", "", false},
		{"start", "", "", false},
	}
	for _, tt := range tests {
		name, args, ok := Event{Payload: Text{Body: tt.body}}.Command()
		assert.Equal(t, tt.ok, ok, tt.body)
		assert.Equal(t, tt.name, name, tt.body)
		assert.Equal(t, tt.args, args, tt.body)
	}

	_, _, ok := Event{Payload: Photo{FileID: "x"}}.Command()
	assert.False(t, ok)
}

func TestKinds(t *testing.T) {
	payloads := map[string]Payload{
		"text":        Text{},
		"photo":       Photo{},
		"document":    Document{},
		"voice":       Voice{},
		"contact":     Contact{},
		"button":      Button{},
		"unsupported": Unsupported{},
	}
	for kind, p := range payloads {
		assert.Equal(t, kind, p.Kind())
	}
}
