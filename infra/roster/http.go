package roster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/minesched/auth"
	"github.com/kilianp07/minesched/core/factory"
	coreroster "github.com/kilianp07/minesched/core/roster"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPReader fetches the roster from a master-data endpoint on every Load.
// The body is JSON unless the response declares a YAML content type.
type HTTPReader struct {
	url    string
	client *http.Client
}

// HTTPConfig configures NewHTTPReader.
type HTTPConfig struct {
	URL       string            `json:"url"`
	TimeoutMS int               `json:"timeout_ms"`
	Headers   map[string]string `json:"headers"`
	Auth      auth.Conf         `json:"auth"`
}

// NewHTTPReader returns a reader for cfg. Requests carry an OAuth2 bearer
// token when cfg.Auth is set.
func NewHTTPReader(cfg HTTPConfig) (*HTTPReader, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("http roster: url is required")
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	client := &http.Client{Timeout: timeout, Transport: headerTransport{headers: cfg.Headers}}
	if cfg.Auth.Enabled() {
		cred, err := auth.NewClientCred(cfg.Auth, &http.Client{Timeout: timeout})
		if err != nil {
			return nil, fmt.Errorf("http roster: %w", err)
		}
		client = cred.Client(client)
	}
	return &HTTPReader{url: cfg.URL, client: client}, nil
}

// Load performs one GET and decodes the body.
func (h *HTTPReader) Load(ctx context.Context) (coreroster.Roster, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return coreroster.Roster{}, err
	}
	req.Header.Set("Accept", "application/json, application/yaml")
	resp, err := h.client.Do(req)
	if err != nil {
		return coreroster.Roster{}, fmt.Errorf("fetch roster: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return coreroster.Roster{}, fmt.Errorf("fetch roster: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	format := "json"
	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
		format = "yaml"
	}
	r, err := coreroster.DecodeRoster(resp.Body, format)
	if err != nil {
		return coreroster.Roster{}, fmt.Errorf("decode roster: %w", err)
	}
	return r, nil
}

type headerTransport struct {
	headers map[string]string
}

func (t headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		r = r.Clone(r.Context())
		for k, v := range t.headers {
			r.Header.Set(k, v)
		}
	}
	return http.DefaultTransport.RoundTrip(r)
}

func init() {
	_ = coreroster.RegisterReader("http", func(conf map[string]any) (coreroster.Reader, error) {
		var c HTTPConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewHTTPReader(c)
	})
}
