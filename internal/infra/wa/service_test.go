package wa

import (
	"testing"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
)

func strPtr(s string) *string { return &s }

func TestMessageText(t *testing.T) {
	cases := []struct {
		name string
		msg  *waE2E.Message
		want string
	}{
		{"nil", nil, ""},
		{"conversation", &waE2E.Message{Conversation: strPtr("#status")}, "#status"},
		{"extended", &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: strPtr("#quest 1")}}, "#quest 1"},
		{"extended without text", &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{}}, ""},
		{"empty", &waE2E.Message{}, ""},
	}

	for _, tc := range cases {
		if got := messageText(tc.msg); got != tc.want {
			t.Errorf("%s: expected '%s', got '%s'", tc.name, tc.want, got)
		}
	}
}

func TestIncomingMessage_IsLID(t *testing.T) {
	cases := []struct {
		sender types.JID
		want   bool
	}{
		{types.NewJID("123456789012345678", "lid"), true},
		{types.NewJID("1234567890123456", types.DefaultUserServer), true},
		{types.NewJID("628123456789", types.DefaultUserServer), false},
	}

	for _, tc := range cases {
		m := IncomingMessage{Sender: tc.sender}
		if got := m.IsLID(); got != tc.want {
			t.Errorf("IsLID(%s) = %v, want %v", tc.sender, got, tc.want)
		}
	}
}
