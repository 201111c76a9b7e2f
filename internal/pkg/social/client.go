// Package social wraps the social page poster used for public broadcasts.
package social

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bantay-ph/bantay-api/internal/pkg/env"
)

type Client interface {
	// Post publishes a message (optionally with an image) to the configured
	// page and returns the provider post id.
	Post(ctx context.Context, message, imageURL string) (string, error)
	// DeletePost removes a previously created post. Best effort.
	DeletePost(ctx context.Context, postID string) error
}

type httpClient struct {
	rest   *resty.Client
	pageID string
}

func New() Client {
	return &httpClient{
		rest: resty.New().
			SetBaseURL(env.GetEnv("SOCIAL_GRAPH_URL", "https://graph.facebook.com/v19.0")).
			SetTimeout(15 * time.Second),
		pageID: env.GetEnv("SOCIAL_PAGE_ID", ""),
	}
}

type postResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *httpClient) Post(ctx context.Context, message, imageURL string) (string, error) {
	endpoint := fmt.Sprintf("/%s/feed", c.pageID)
	params := map[string]string{
		"message":      message,
		"access_token": env.GetEnv("SOCIAL_PAGE_TOKEN", ""),
	}
	if imageURL != "" {
		endpoint = fmt.Sprintf("/%s/photos", c.pageID)
		params["url"] = imageURL
		params["caption"] = message
		delete(params, "message")
	}

	var out postResponse
	res, err := c.rest.R().
		SetContext(ctx).
		SetFormData(params).
		SetResult(&out).
		SetError(&out).
		Post(endpoint)
	if err != nil {
		return "", fmt.Errorf("social post failed: %w", err)
	}
	if !res.IsSuccess() || out.ID == "" {
		if out.Error != nil {
			return "", fmt.Errorf("social provider rejected post: %s", out.Error.Message)
		}
		return "", fmt.Errorf("social provider returned status %d", res.StatusCode())
	}
	return out.ID, nil
}

func (c *httpClient) DeletePost(ctx context.Context, postID string) error {
	res, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("access_token", env.GetEnv("SOCIAL_PAGE_TOKEN", "")).
		Delete("/" + postID)
	if err != nil {
		return fmt.Errorf("social delete failed: %w", err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("social provider returned status %d", res.StatusCode())
	}
	return nil
}
