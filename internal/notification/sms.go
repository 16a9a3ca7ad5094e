package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/httpclient"
)

// ErrNoGatewayURL is returned when the SMS provider has no URL
var ErrNoGatewayURL = errors.New("sms gateway url is empty")

// smsPayload is the body the gateway expects
type smsPayload struct {
	Phone  []string `json:"phone"`
	Method string   `json:"method"`
	Text   string   `json:"text"`
}

// SMSProvider posts text messages to an HTTP SMS gateway (TILL_URL)
type SMSProvider struct {
	url    string
	client *http.Client
}

// NewSMSProvider creates a provider for the gateway at url
func NewSMSProvider(url string, timeout time.Duration) *SMSProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMSProvider{
		url:    url,
		client: httpclient.NewClient("sms", timeout),
	}
}

// Name returns the provider name
func (p *SMSProvider) Name() string {
	return "sms"
}

// SendText sends one message. It reports delivered only when the gateway
// answers 200; any other status is a refusal, not an error.
func (p *SMSProvider) SendText(ctx context.Context, phone, text string) (bool, error) {
	if p.url == "" {
		return false, ErrNoGatewayURL
	}

	body, err := json.Marshal(smsPayload{
		Phone:  []string{phone},
		Method: "SMS",
		Text:   text,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("sms gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Msg("SMS gateway refused message")
		return false, nil
	}
	return true, nil
}
