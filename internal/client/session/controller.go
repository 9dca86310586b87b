// Package session owns the client-side lifecycle of one support chat:
// Idle until a guest starts a chat or an admin joins one, Starting
// while the backend call and connection handshake are in flight,
// Active while the persistent channel relays frames, Closed after
// teardown. One controller binds one chat id, one transport channel
// and one message log.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvthuy/salon-support/internal/client/msglog"
	"github.com/nvthuy/salon-support/internal/client/transport"
	"github.com/nvthuy/salon-support/internal/model/chat"
)

// State is the controller's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateActive
	StateClosed
)

// String renders the state for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrGuestNameRequired  = errors.New("session: guest name is required")
	ErrGuestPhoneRequired = errors.New("session: guest phone is required")
	ErrEmptyContent       = errors.New("session: message content is empty")
	ErrAlreadyStarted     = errors.New("session: a chat is already in progress")
	ErrNoChat             = errors.New("session: no chat bound")
)

// Transport is the slice of the channel the controller drives.
type Transport interface {
	Send(chat.Frame) error
	Close(reason string) error
}

// DialFunc opens the persistent channel; tests swap in a fake.
type DialFunc func(ctx context.Context, endpoint string, onFrame transport.FrameHandler, onError transport.ErrorHandler) (Transport, error)

// Backend is the REST surface the controller needs.
type Backend interface {
	CreateChat(ctx context.Context, guestName, guestPhone string) (chat.Session, error)
	Messages(ctx context.Context, chatID string) ([]chat.Message, error)
	Chat(ctx context.Context, chatID string) (chat.Session, error)
}

// Config wires a controller. Endpoint is the websocket URL without the
// chatId query parameter, e.g. "ws://localhost:8080/api/ws/chat".
type Config struct {
	Backend  Backend
	Endpoint string
	Dial     DialFunc

	// OnUpdate fires after the message log changes so the view can
	// re-render. OnConnError reports a transport failure while Active
	// as a connectivity warning; the state does not change.
	OnUpdate    func()
	OnConnError func(error)
}

// Controller is the session state machine.
type Controller struct {
	backend     Backend
	endpoint    string
	dial        DialFunc
	onUpdate    func()
	onConnError func(error)

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	state   State
	role    chat.Role
	session chat.Session
	channel Transport
	log     *msglog.Log
}

// New builds an idle controller.
func New(cfg Config) *Controller {
	dial := cfg.Dial
	if dial == nil {
		dial = func(ctx context.Context, endpoint string, onFrame transport.FrameHandler, onError transport.ErrorHandler) (Transport, error) {
			return transport.Dial(ctx, endpoint, onFrame, onError)
		}
	}
	return &Controller{
		backend:     cfg.Backend,
		endpoint:    cfg.Endpoint,
		dial:        dial,
		onUpdate:    cfg.OnUpdate,
		onConnError: cfg.OnConnError,
		now:         time.Now,
		newID:       uuid.NewString,
		state:       StateIdle,
		log:         msglog.New(),
	}
}

// StartGuest runs the guest path: validate locally, create the chat on
// the backend, open the channel, send the join frame. Validation
// failures never issue a network call.
func (c *Controller) StartGuest(ctx context.Context, guestName, guestPhone string) error {
	guestName = strings.TrimSpace(guestName)
	guestPhone = strings.TrimSpace(guestPhone)
	if guestName == "" {
		return ErrGuestNameRequired
	}
	if guestPhone == "" {
		return ErrGuestPhoneRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateStarting || c.state == StateActive {
		return ErrAlreadyStarted
	}
	c.state = StateStarting
	c.role = chat.Guest(guestName, guestPhone)
	c.log.Clear()

	session, err := c.backend.CreateChat(ctx, guestName, guestPhone)
	if err != nil {
		c.state = StateIdle
		return fmt.Errorf("create chat: %w", err)
	}
	c.session = session

	if err := c.connect(ctx); err != nil {
		c.state = StateIdle
		return err
	}
	c.state = StateActive
	return nil
}

// JoinAdmin runs the admin path for a chat picked from the
// notification feed: resolve the guest, seed the log from history,
// open the channel. No session-creation call is made.
func (c *Controller) JoinAdmin(ctx context.Context, chatID string) error {
	if strings.TrimSpace(chatID) == "" {
		return ErrNoChat
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateStarting || c.state == StateActive {
		return ErrAlreadyStarted
	}
	c.state = StateStarting
	c.role = chat.Admin()
	c.log.Clear()

	session, err := c.backend.Chat(ctx, chatID)
	if err != nil {
		c.state = StateIdle
		return fmt.Errorf("resolve chat %s: %w", chatID, err)
	}
	c.session = session

	if err := c.seedHistory(ctx); err != nil {
		c.state = StateIdle
		return err
	}
	if err := c.connect(ctx); err != nil {
		c.state = StateIdle
		return err
	}
	c.state = StateActive
	return nil
}

// Send transmits a message over the channel and appends it to the log
// as an optimistic local echo. Outside Active it fails with
// transport.ErrNotConnected and touches neither the log nor the
// channel.
func (c *Controller) Send(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive || c.channel == nil {
		return transport.ErrNotConnected
	}

	msg := chat.Message{
		ChatID:        c.session.ID,
		Content:       content,
		SenderRole:    c.role.SenderTag(),
		CorrelationID: c.newID(),
		CreatedAt:     c.now(),
	}
	if err := c.channel.Send(chat.MessageFrame(msg)); err != nil {
		return err
	}
	c.log.Append(msg)
	c.notify()
	return nil
}

// Reconnect is the explicit recovery path after connectivity loss: it
// re-enters Starting, drops the old channel, re-fetches history to
// reconcile frames missed while disconnected, and reopens. The
// append-only guarantee holds only within one connection's lifetime,
// so the log is rebuilt rather than extended across the gap.
func (c *Controller) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.ID == "" || c.state == StateClosed {
		return ErrNoChat
	}

	if c.channel != nil {
		c.channel.Close("reconnecting")
		c.channel = nil
	}
	c.state = StateStarting
	c.log.Clear()

	if err := c.seedHistory(ctx); err != nil {
		c.state = StateIdle
		return err
	}
	if err := c.connect(ctx); err != nil {
		c.state = StateIdle
		return err
	}
	c.state = StateActive
	c.notify()
	return nil
}

// Close tears the session down: the channel is closed synchronously
// before any state is discarded, so no send can race teardown, then
// the log is cleared. Closing twice is a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	if c.channel != nil {
		c.channel.Close("chat closed")
		c.channel = nil
	}
	c.log.Clear()
	c.state = StateClosed
}

// State returns the current lifecycle position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ChatID returns the bound chat identifier, empty while Idle.
func (c *Controller) ChatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

// GuestName returns the guest display name of the bound chat.
func (c *Controller) GuestName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role.IsAdmin() {
		return c.session.GuestName
	}
	return c.role.GuestName()
}

// Role returns the local actor's role.
func (c *Controller) Role() chat.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// Messages returns the log contents in arrival order.
func (c *Controller) Messages() []chat.Message {
	return c.log.All()
}

// seedHistory loads stored messages so the log starts from the
// backend's view before live frames arrive. Caller holds c.mu.
func (c *Controller) seedHistory(ctx context.Context) error {
	history, err := c.backend.Messages(ctx, c.session.ID)
	if err != nil {
		return fmt.Errorf("fetch history for chat %s: %w", c.session.ID, err)
	}
	for _, m := range history {
		c.log.Append(m)
	}
	return nil
}

// connect dials the endpoint and sends the join frame as the first
// outbound frame. Caller holds c.mu.
func (c *Controller) connect(ctx context.Context) error {
	endpoint := c.endpoint + "?chatId=" + url.QueryEscape(c.session.ID)
	ch, err := c.dial(ctx, endpoint, c.handleFrame, c.handleConnError)
	if err != nil {
		return fmt.Errorf("open chat channel: %w", err)
	}
	if err := ch.Send(chat.JoinFrame(c.session.ID, c.role)); err != nil {
		ch.Close("join failed")
		return fmt.Errorf("send join frame: %w", err)
	}
	c.channel = ch
	return nil
}

// handleFrame runs on the transport's read goroutine. It must not
// call back into the controller's locked methods.
func (c *Controller) handleFrame(f chat.Frame) {
	if !f.IsContent() {
		return
	}
	// The server echoes the sender's own frame to every participant;
	// ours is already in the log.
	if c.log.SeenCorrelation(f.CorrelationID) {
		return
	}
	c.log.Append(f.AsMessage())
	c.notify()
}

// handleConnError surfaces a transport failure as a connectivity
// warning. The state machine does not move; recovery is an explicit
// Reconnect by the caller.
func (c *Controller) handleConnError(err error) {
	if c.onConnError != nil {
		c.onConnError(err)
	}
}

func (c *Controller) notify() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}
