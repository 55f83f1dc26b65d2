package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://translate.argosopentech.com"
	defaultSource  = "en"
	defaultTarget  = "es"
	defaultTimeout = 10 * time.Second
)

// Config tunes the client; zero values translate en→es against the public
// Argos instance with a 10s per-call timeout.
type Config struct {
	BaseURL string
	Source  string
	Target  string
	Timeout time.Duration
}

// Client translates single text fields through a LibreTranslate server.
// Callers treat it as best-effort and keep the original text on error.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Source == "" {
		cfg.Source = defaultSource
	}
	if cfg.Target == "" {
		cfg.Target = defaultTarget
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{httpClient: httpClient, cfg: cfg}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: c.cfg.Source,
		Target: c.cfg.Target,
		Format: "text",
	})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/translate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate returned status %d", resp.StatusCode)
	}

	var payload translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode translate payload: %w", err)
	}
	return payload.TranslatedText, nil
}
