package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"riderapp/internal/domain"
)

// Messages fetches the full chat thread for a ride. Ordering is
// server-assigned; callers append only.
func (c *Client) Messages(ctx context.Context, rideID string) ([]domain.ChatMessage, error) {
	var resp struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	path := "/api/v1/rides/" + url.PathEscape(rideID) + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage posts a message and returns the server's acknowledged copy,
// which is the only version the caller appends locally.
func (c *Client) SendMessage(ctx context.Context, rideID string, from domain.ChatSender, text string) (*domain.ChatMessage, error) {
	body := struct {
		FromType domain.ChatSender `json:"from_type"`
		Message  string            `json:"message"`
	}{FromType: from, Message: text}

	var msg domain.ChatMessage
	path := "/api/v1/rides/" + url.PathEscape(rideID) + "/messages"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &msg, true); err != nil {
		return nil, err
	}
	if msg.Message == "" {
		return nil, fmt.Errorf("%w: send ack missing message", ErrMalformedResponse)
	}
	return &msg, nil
}
