package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DEFAULT_TIMEOUT = 10 * time.Second

	// response bodies are only kept for error messages
	maxResponseBodySize = 64 * 1024
)

type ClientConfig struct {
	RootURL string
	Timeout time.Duration

	// optional, a default client with Timeout is used when nil
	HTTPClient *http.Client
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (cConfig ClientConfig) client() *http.Client {
	if cConfig.HTTPClient != nil {
		return cConfig.HTTPClient
	}
	timeout := cConfig.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	return &http.Client{
		Timeout: timeout,
	}
}

// PostBody sends body to RootURL+pathname and returns the response body of a 2xx answer.
func (cConfig ClientConfig) PostBody(ctx context.Context, pathname string, body []byte, contentType string) ([]byte, error) {
	url := cConfig.RootURL + pathname
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("unexpected error in preparing http request", slog.String("error", err.Error()))
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := cConfig.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return respBody, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
