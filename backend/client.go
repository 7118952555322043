package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-pianoroll/midi"
	"go-pianoroll/model"
	"go-pianoroll/transform"
)

// ErrBackend is wrapped by every failure the service itself reports
var ErrBackend = errors.New("backend error")

// Client talks to a generation backend. It satisfies transform.Delegate.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

var _ transform.Delegate = (*Client)(nil)

// NewClient returns a client for the backend at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Transform posts notes to /generate_<name> and returns the replacement list
func (c *Client) Transform(ctx context.Context, name string, notes []model.WireNote, p transform.DelegateParams) ([]model.WireNote, error) {
	body, err := json.Marshal(TransformRequest{Notes: notes, Key: p.Key, ScaleType: p.ScaleType})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate_"+name, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out TransformResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s", ErrBackend, resp.Status)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrBackend, out.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrBackend, resp.Status)
	}
	return out.Counterpoint, nil
}

// Generate fetches a generated document
func (c *Client) Generate(ctx context.Context) (model.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/generate", nil)
	if err != nil {
		return model.Document{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return model.Document{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "audio/midi") {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Document{}, fmt.Errorf("%w: %s %s", ErrBackend, resp.Status, strings.TrimSpace(string(msg)))
	}
	return midi.Read(resp.Body)
}
