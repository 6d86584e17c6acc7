package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultCompletionPath = "/v1/completions"

// HTTPProviderConfig configures a remote completion endpoint.
type HTTPProviderConfig struct {
	// URL is the provider base URL (e.g. "http://localhost:8900").
	URL string

	// Path is the completion endpoint path. Defaults to /v1/completions.
	Path string

	// Model is passed through to the provider.
	Model string

	// Token is sent as a bearer token when non-empty.
	Token string

	// MaxResults caps the recommendations requested. Defaults to 3.
	MaxResults int
}

// HTTPProvider fetches completions from a remote endpoint speaking the
// plain JSON completion protocol.
type HTTPProvider struct {
	cfg    HTTPProviderConfig
	client *http.Client
}

// NewHTTPProvider creates a provider. Request deadlines come from the
// caller's context (the Service applies its timeout).
func NewHTTPProvider(cfg HTTPProviderConfig) *HTTPProvider {
	if cfg.Path == "" {
		cfg.Path = defaultCompletionPath
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	return &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// completionRequest is the wire request. Rows are 1-indexed on the wire,
// columns 0-indexed.
type completionRequest struct {
	Path       string   `json:"path,omitempty"`
	Lines      []string `json:"lines"`
	CursorRow  int      `json:"cursor_row"`
	CursorCol  int      `json:"cursor_col"`
	Model      string   `json:"model,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
	Trigger    string   `json:"trigger,omitempty"`
}

type completionResponse struct {
	Completions []struct {
		Text string `json:"text"`
	} `json:"completions"`
	Model string `json:"model,omitempty"`
}

// Fetch implements Provider.
func (p *HTTPProvider) Fetch(ctx context.Context, req Request) (*Response, error) {
	wire := completionRequest{
		Path:       req.Path,
		Lines:      req.Lines,
		CursorRow:  req.Line + 1,
		CursorCol:  req.Col,
		Model:      p.cfg.Model,
		MaxResults: p.cfg.MaxResults,
		Trigger:    string(req.Trigger),
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	url := strings.TrimSuffix(p.cfg.URL, "/") + p.cfg.Path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch completions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(msg))
	}

	var wireResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}

	out := &Response{Model: wireResp.Model}
	for _, c := range wireResp.Completions {
		if c.Text == "" {
			continue
		}
		out.Recommendations = append(out.Recommendations, Recommendation{Text: c.Text})
	}
	return out, nil
}
