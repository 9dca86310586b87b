// Package view holds the thin presentation state of the floating chat
// widget: whether it is closed, minimized to its launcher icon, or
// fully open, and which chat the admin currently has selected.
package view

import "sync"

// Visibility is the widget's display mode.
type Visibility int

const (
	Closed Visibility = iota
	Minimized
	Open
)

// String renders the visibility for logs.
func (v Visibility) String() string {
	switch v {
	case Closed:
		return "closed"
	case Minimized:
		return "minimized"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// Widget is driven by user intent and by notification-feed selection.
type Widget struct {
	mu         sync.Mutex
	visibility Visibility
	selected   string
}

// NewWidget starts closed with no selection.
func NewWidget() *Widget {
	return &Widget{visibility: Closed}
}

// Open shows the widget.
func (w *Widget) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visibility = Open
}

// Minimize collapses the widget to its launcher.
func (w *Widget) Minimize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visibility = Minimized
}

// Close hides the widget and drops the selection.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visibility = Closed
	w.selected = ""
}

// Toggle flips between open and minimized, opening a closed widget.
func (w *Widget) Toggle() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.visibility == Open {
		w.visibility = Minimized
	} else {
		w.visibility = Open
	}
}

// SelectChat records a feed selection and forces the widget open so
// the chosen conversation is visible.
func (w *Widget) SelectChat(chatID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = chatID
	w.visibility = Open
}

// Visibility returns the current display mode.
func (w *Widget) Visibility() Visibility {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visibility
}

// Selected returns the chat id the widget is showing, empty when none.
func (w *Widget) Selected() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}
