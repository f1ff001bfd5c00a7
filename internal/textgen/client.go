// Package textgen asks an external generative-text API for short menu copy.
package textgen

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

	"pub_pos_backend/pkg/utils"
)

// Fallback is returned whenever a description cannot be generated.
const Fallback = "Could not generate AI description."

var ErrDisabled = errors.New("text generation is not configured")

// Describer produces a one-to-two sentence promotional description for an item name.
type Describer interface {
	Describe(ctx context.Context, itemName string) string
}

// Config for the generateContent endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls a Gemini-style generateContent endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Prompt builds the request text for an item.
func Prompt(itemName string) string {
	return fmt.Sprintf("Generate a short, catchy, and appealing menu description for a drink or food item called %q. Keep it to one or two sentences.", itemName)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"topP"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Describe never fails: errors are logged and the fallback text is returned.
func (c *Client) Describe(ctx context.Context, itemName string) string {
	text, err := c.Generate(ctx, Prompt(itemName))
	if err != nil {
		utils.LogWarn(err, "textgen: description generation failed", map[string]interface{}{"item": itemName})
		return Fallback
	}
	return text
}

// Generate sends prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" || c.cfg.BaseURL == "" {
		return "", ErrDisabled
	}

	var body generateRequest
	body.Contents = []content{{Parts: []part{{Text: prompt}}}}
	body.GenerationConfig.Temperature = 0.8
	body.GenerationConfig.TopP = 0.9
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call text generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("text generation returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", errors.New("text generation returned no candidates")
}
