// Package api is the typed REST boundary the chat core talks to:
// session creation, history, session info, the admin notification
// feed, and the legacy REST reply path.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nvthuy/salon-support/internal/model/chat"
)

// ErrUnauthorized signals an admin-only call made without a valid
// bearer credential. It is surfaced to the caller, never retried.
var ErrUnauthorized = errors.New("api: unauthorized")

// Client calls the storefront backend. Token is the admin bearer
// credential sourced from the login step; guests leave it empty.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the given base URL ("http://host:port").
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Token returns the configured bearer credential.
func (c *Client) Token() string { return c.token }

// CreateChat registers a new guest conversation and returns the
// server-assigned session.
func (c *Client) CreateChat(ctx context.Context, guestName, guestPhone string) (chat.Session, error) {
	var session chat.Session
	payload := map[string]string{"guestName": guestName, "guestPhone": guestPhone}
	if err := c.do(ctx, http.MethodPost, "/api/create-chat", payload, false, &session); err != nil {
		return chat.Session{}, err
	}
	return session, nil
}

// Messages fetches the stored history for a chat in send order.
func (c *Client) Messages(ctx context.Context, chatID string) ([]chat.Message, error) {
	var messages []chat.Message
	if err := c.do(ctx, http.MethodGet, "/api/chat/"+chatID+"/messages", nil, false, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Chat resolves session info, used by the admin side to learn the
// guest's display name before joining.
func (c *Client) Chat(ctx context.Context, chatID string) (chat.Session, error) {
	var session chat.Session
	if err := c.do(ctx, http.MethodGet, "/api/chat/"+chatID, nil, false, &session); err != nil {
		return chat.Session{}, err
	}
	return session, nil
}

// Notifications fetches the set of chats awaiting admin attention.
// Requires the bearer credential.
func (c *Client) Notifications(ctx context.Context) ([]chat.RequestSummary, error) {
	var summaries []chat.RequestSummary
	if err := c.do(ctx, http.MethodGet, "/api/admin/notifications", nil, true, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Reply sends an admin message over the legacy REST path. Superseded
// by the persistent channel; kept because the endpoint still exists.
func (c *Client) Reply(ctx context.Context, chatID, content string) error {
	payload := map[string]string{"chatId": chatID, "content": content}
	return c.do(ctx, http.MethodPost, "/api/reply-chat", payload, true, nil)
}

// Login exchanges admin credentials for a bearer token and stores it
// on the client for subsequent credentialed calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", payload, false, &out); err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, credentialed bool, out any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if credentialed {
		if c.token == "" {
			return ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
