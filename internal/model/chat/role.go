package chat

type roleKind int

const (
	roleGuest roleKind = iota
	roleAdmin
)

// Role is the local actor's side of a conversation: either the staff
// member serving chats or a guest identified by name and phone. The
// zero value is an anonymous guest.
type Role struct {
	kind  roleKind
	name  string
	phone string
}

// Guest builds the guest variant. Name and phone are fixed for the
// session once the chat is created.
func Guest(name, phone string) Role {
	return Role{kind: roleGuest, name: name, phone: phone}
}

// Admin builds the staff variant.
func Admin() Role {
	return Role{kind: roleAdmin}
}

// IsAdmin reports whether the role is the staff side.
func (r Role) IsAdmin() bool { return r.kind == roleAdmin }

// GuestName returns the guest display name, empty for admins.
func (r Role) GuestName() string {
	if r.kind != roleGuest {
		return ""
	}
	return r.name
}

// GuestPhone returns the guest contact phone, empty for admins.
func (r Role) GuestPhone() string {
	if r.kind != roleGuest {
		return ""
	}
	return r.phone
}

// SenderTag is the wire value placed in a message's senderRole field:
// "Admin" for staff, the guest's display name otherwise.
func (r Role) SenderTag() string {
	if r.kind == roleAdmin {
		return "Admin"
	}
	return r.name
}

// Wire is the value sent in the join frame's role field so a
// multiplexed server can route the connection.
func (r Role) Wire() string {
	if r.kind == roleAdmin {
		return "admin"
	}
	return "guest"
}
