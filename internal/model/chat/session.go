package chat

import "time"

// Session is one guest-admin conversation as known to the backend.
// The identifier is server-assigned and stays immutable for the
// session's lifetime; guest fields are set once at creation.
type Session struct {
	ID         string    `json:"id"`
	GuestName  string    `json:"guestName"`
	GuestPhone string    `json:"guestPhone"`
	CreatedAt  time.Time `json:"createdAt"`
}
