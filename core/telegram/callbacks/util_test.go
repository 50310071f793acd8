package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name         string
		cb           *tele.Callback
		key, payload string
	}{
		{"nil", nil, "", ""},
		{"raw", &tele.Callback{Data: "\fhr_vac|Mentor"}, "hr_vac", "Mentor"},
		{"payload with separator", &tele.Callback{Data: "\ftariff|SMM|Premium"}, "tariff", "SMM|Premium"},
		{"no payload", &tele.Callback{Data: "\fmenu"}, "menu", ""},
		{"routed", &tele.Callback{Unique: "sup_cat", Data: "payment"}, "sup_cat", "payment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tt.cb)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.payload, payload)
		})
	}
}
