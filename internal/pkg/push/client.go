// Package push wraps the mobile push provider. A failed or timed-out send is
// reported to the dispatcher as a channel failure, never as a fatal error.
package push

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bantay-ph/bantay-api/internal/pkg/env"
)

// Message is a single push payload fanned out to a set of device tokens.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type Client interface {
	Send(ctx context.Context, msg Message, deviceTokens []string) error
}

type httpClient struct {
	rest *resty.Client
}

func New() Client {
	return &httpClient{
		rest: resty.New().
			SetBaseURL(env.GetEnv("PUSH_URL", "")).
			SetAuthScheme("Bearer").
			SetAuthToken(env.GetEnv("PUSH_API_KEY", "")).
			SetTimeout(10 * time.Second),
	}
}

type sendRequest struct {
	Message Message  `json:"message"`
	Tokens  []string `json:"tokens"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (c *httpClient) Send(ctx context.Context, msg Message, deviceTokens []string) error {
	if len(deviceTokens) == 0 {
		return nil
	}

	var out sendResponse
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(sendRequest{Message: msg, Tokens: deviceTokens}).
		SetResult(&out).
		Post("/send")
	if err != nil {
		return fmt.Errorf("push send failed: %w", err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("push provider returned status %d", res.StatusCode())
	}
	if !out.Success {
		return fmt.Errorf("push provider rejected message: %s", out.Error)
	}
	return nil
}
