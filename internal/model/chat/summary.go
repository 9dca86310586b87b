package chat

// RequestSummary is one notification-feed entry: a chat waiting for or
// holding admin attention. GuestName and LastMessage are nullable; an
// absent name renders as an anonymous guest.
type RequestSummary struct {
	ChatID      string  `json:"id"`
	GuestName   *string `json:"guestName"`
	LastMessage *string `json:"lastMessage"`
}

// DisplayName is the feed label for the entry.
func (s RequestSummary) DisplayName() string {
	if s.GuestName == nil || *s.GuestName == "" {
		return "Anonymous Guest"
	}
	return *s.GuestName
}

// Preview is the most recent message text, empty when none exists.
func (s RequestSummary) Preview() string {
	if s.LastMessage == nil {
		return ""
	}
	return *s.LastMessage
}
