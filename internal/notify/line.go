// Package notify delivers reminder text to the shop's LINE account.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultPushURL = "https://api.line.me/v2/bot/message/push"

// Gateway sends a text message to one recipient.
type Gateway interface {
	SendText(ctx context.Context, recipientID, message string) error
}

// GatewayError is a failed delivery. StatusCode is zero when no response arrived.
type GatewayError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return "line push: " + e.Err.Error()
	}
	return fmt.Sprintf("line push: status %d: %s", e.StatusCode, e.Body)
}

func (e *GatewayError) Unwrap() error { return e.Err }

type LINE struct {
	Token   string
	PushURL string
	HTTP    *http.Client
}

func NewLINE(token, pushURL string) *LINE {
	if pushURL == "" {
		pushURL = DefaultPushURL
	}
	return &LINE{Token: token, PushURL: pushURL, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

func (l *LINE) SendText(ctx context.Context, recipientID, message string) error {
	body, err := json.Marshal(pushRequest{
		To:       recipientID,
		Messages: []textMessage{{Type: "text", Text: message}},
	})
	if err != nil {
		return &GatewayError{Err: errors.Wrap(err, "encode push")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.PushURL, bytes.NewReader(body))
	if err != nil {
		return &GatewayError{Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.Token)

	client := l.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &GatewayError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &GatewayError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Discard is used when no LINE token is configured. It logs and drops messages.
type Discard struct {
	Log *zap.Logger
}

func (d Discard) SendText(_ context.Context, recipientID, message string) error {
	if d.Log != nil {
		d.Log.Info("notification dropped, gateway not configured",
			zap.String("recipient", recipientID), zap.String("message", message))
	}
	return nil
}
