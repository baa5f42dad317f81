package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SessionData is the profile the identity provider returns for a valid
// opaque session id.
type SessionData struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// ErrInvalidSession means the provider rejected the session id; any other
// failure is reported as the provider being unavailable.
var ErrInvalidSession = fmt.Errorf("invalid session")

// Client talks to the external identity provider. The provider is opaque:
// given a session id it either returns the user's profile and a session
// token, or rejects the exchange.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) ExchangeSession(ctx context.Context, sessionID string) (*SessionData, error) {
	url := fmt.Sprintf("%s/session-data", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach auth service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidSession
	}

	var data SessionData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if data.Name == "" {
		// Provider may omit the display name; fall back to the mailbox part.
		for i, r := range data.Email {
			if r == '@' {
				data.Name = data.Email[:i]
				break
			}
		}
		if data.Name == "" {
			data.Name = data.Email
		}
	}

	return &data, nil
}
