package chat

import (
	"encoding/json"
	"testing"
)

func TestSenderTag(t *testing.T) {
	if got := Admin().SenderTag(); got != "Admin" {
		t.Fatalf("admin sender tag: got %q", got)
	}
	if got := Guest("Lan", "0901").SenderTag(); got != "Lan" {
		t.Fatalf("guest sender tag: got %q", got)
	}
}

func TestGuestFieldsHiddenFromAdmin(t *testing.T) {
	r := Admin()
	if r.GuestName() != "" || r.GuestPhone() != "" {
		t.Fatal("admin role must not expose guest identity")
	}

	g := Guest("Lan", "0901")
	if g.GuestName() != "Lan" || g.GuestPhone() != "0901" {
		t.Fatalf("guest fields lost: %q %q", g.GuestName(), g.GuestPhone())
	}
}

func TestJoinFrameShape(t *testing.T) {
	f := JoinFrame("42", Guest("Lan", "0901"))
	if f.Type != FrameJoin || f.ChatID != "42" || f.Role != "guest" {
		t.Fatalf("unexpected join frame: %+v", f)
	}
	if f.IsContent() {
		t.Fatal("join frame must not count as content")
	}

	payload, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	want := `{"type":"join","chatId":"42","role":"guest"}`
	if string(payload) != want {
		t.Fatalf("join frame wire shape changed:\n got %s\nwant %s", payload, want)
	}
}

func TestMessageFrameRoundTrip(t *testing.T) {
	m := Message{ChatID: "42", Content: "Hello", SenderRole: "Lan", CorrelationID: "corr-1"}
	f := MessageFrame(m)
	if !f.IsContent() {
		t.Fatal("message frame must count as content")
	}

	back := f.AsMessage()
	if back.ChatID != m.ChatID || back.Content != m.Content || back.SenderRole != m.SenderRole || back.CorrelationID != m.CorrelationID {
		t.Fatalf("round trip lost fields: %+v", back)
	}
}

func TestLegacyFrameWithoutTypeIsContent(t *testing.T) {
	var f Frame
	if err := json.Unmarshal([]byte(`{"content":"hi","senderRole":"Lan"}`), &f); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if !f.IsContent() {
		t.Fatal("typeless frame must be treated as content")
	}
}
