// Package feed maintains the admin-side list of chats awaiting or
// holding attention. The set is replaced wholesale on every refresh;
// it is never merged with live message updates, and the badge count is
// simply the size of the last fetch.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/nvthuy/salon-support/internal/model/chat"
)

// Source fetches the pending-chat set. *api.Client satisfies it.
type Source interface {
	Notifications(ctx context.Context) ([]chat.RequestSummary, error)
}

// Joiner receives the chat identifier picked from the list and is
// asked to enter the admin-join path. *session.Controller satisfies it.
type Joiner interface {
	JoinAdmin(ctx context.Context, chatID string) error
}

// Feed caches the last fetched summaries in fetch order.
type Feed struct {
	source Source
	joiner Joiner

	mu      sync.RWMutex
	order   []string
	byID    map[string]chat.RequestSummary
}

// New builds an empty feed.
func New(source Source, joiner Joiner) *Feed {
	return &Feed{
		source: source,
		joiner: joiner,
		byID:   make(map[string]chat.RequestSummary),
	}
}

// Refresh replaces the visible set with a fresh fetch. Entries absent
// from the new fetch are dropped; nothing is merged.
func (f *Feed) Refresh(ctx context.Context) error {
	summaries, err := f.source.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}

	order := make([]string, 0, len(summaries))
	byID := make(map[string]chat.RequestSummary, len(summaries))
	for _, s := range summaries {
		if _, dup := byID[s.ChatID]; !dup {
			order = append(order, s.ChatID)
		}
		byID[s.ChatID] = s
	}

	f.mu.Lock()
	f.order = order
	f.byID = byID
	f.mu.Unlock()
	return nil
}

// Count is the badge value: the size of the set at last refresh. It
// only moves on Refresh, not as chats are viewed.
func (f *Feed) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}

// List returns the summaries in fetch order.
func (f *Feed) List() []chat.RequestSummary {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]chat.RequestSummary, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.byID[id])
	}
	return out
}

// Get looks up one entry by chat id.
func (f *Feed) Get(chatID string) (chat.RequestSummary, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.byID[chatID]
	return s, ok
}

// Select hands the identifier to the session controller and requests
// the admin-join transition.
func (f *Feed) Select(ctx context.Context, chatID string) error {
	f.mu.RLock()
	_, known := f.byID[chatID]
	f.mu.RUnlock()
	if !known {
		return fmt.Errorf("chat %s is not in the notification feed", chatID)
	}
	return f.joiner.JoinAdmin(ctx, chatID)
}
