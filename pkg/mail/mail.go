package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Mailer sends a single HTML email. Implementations are best-effort; callers
// treat failures as non-fatal.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendMailer delivers mail through the Resend REST API.
type ResendMailer struct {
	apiKey     string
	sender     string
	endpoint   string
	httpClient *http.Client
}

func NewResendMailer(apiKey, sender string) *ResendMailer {
	return &ResendMailer{
		apiKey:     apiKey,
		sender:     sender,
		endpoint:   "https://api.resend.com/emails",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.apiKey == "" {
		return fmt.Errorf("no Resend API key configured")
	}

	requestBody := map[string]interface{}{
		"from":    m.sender,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error: %s", string(body))
	}

	return nil
}
