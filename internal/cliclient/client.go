// Package cliclient is the HTTP client journalctl uses to talk to journald.
package cliclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	Token   string

	HTTP *http.Client
}

// Envelope is the response wrapper every journald endpoint returns.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

// APIError is a non-2xx reply.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 90 * time.Second}
}

func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, errors.New("base url is empty")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := strings.TrimRight(c.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := strings.TrimSpace(c.Token); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// Do sends req and decodes the envelope. A non-2xx status becomes *APIError
// carrying the server's message.
func (c *Client) Do(req *http.Request) (Envelope, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Envelope{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Envelope{}, err
	}

	var env Envelope
	decodeErr := json.Unmarshal(b, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(env.Message)
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(b))
		}
		return Envelope{}, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return Envelope{}, fmt.Errorf("decode response: %w", decodeErr)
	}
	return env, nil
}

// Call is NewRequest followed by Do. body may be nil, raw JSON bytes, or any
// value that is marshalled to JSON.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any) (Envelope, error) {
	var raw []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Envelope{}, err
		}
		raw = b
	}
	req, err := c.NewRequest(ctx, method, path, query, raw)
	if err != nil {
		return Envelope{}, err
	}
	return c.Do(req)
}
