// Package llm translates recognized text through an OpenRouter chat model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	openRouterURL  = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel   = "google/gemini-flash-1.5"
	DefaultTarget  = "English"
	defaultTimeout = 30 * time.Second
)

var (
	ErrMissingAPIKey = errors.New("API key is required")
	ErrMissingModel  = errors.New("model is required")
)

type Config struct {
	APIKey     string
	Model      string
	Providers  []string
	TargetLang string
	Endpoint   string
	Timeout    time.Duration
}

// OpenRouter API structures
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ProviderPreferences struct {
	Order          []string `json:"order,omitempty"`
	AllowFallbacks *bool    `json:"allow_fallbacks,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatRequest struct {
	Model          string               `json:"model"`
	Messages       []Message            `json:"messages"`
	Temperature    float64              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens"`
	ResponseFormat *ResponseFormat      `json:"response_format,omitempty"`
	Provider       *ProviderPreferences `json:"provider,omitempty"`
}

type ChatResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Message Message `json:"message"`
}

type APIError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // Can be string or number
}

// Item is one entry of the structured translation response.
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Translator sends numbered source strings and returns translations in the
// same order. It keeps no per-call state and performs no retries.
type Translator struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Translator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = DefaultTarget
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = openRouterURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Translator{cfg: cfg, client: &http.Client{Timeout: timeout}}, nil
}

// getProviderPreferences returns provider preferences based on config
func (t *Translator) getProviderPreferences() *ProviderPreferences {
	if len(t.cfg.Providers) == 0 {
		return nil
	}
	allowFallbacks := false
	return &ProviderPreferences{
		Order:          t.cfg.Providers,
		AllowFallbacks: &allowFallbacks,
	}
}

// BuildPrompt numbers each source string so the reply can be matched by index.
func BuildPrompt(texts []string, target string) string {
	var b strings.Builder
	b.WriteString("You are an expert translator.\n")
	fmt.Fprintf(&b, "Translate each numbered text below to %s.\n", target)
	b.WriteString("Reply with JSON only, in the form {\"translations\": [{\"index\": 0, \"text\": \"...\"}]}, ")
	b.WriteString("one entry per input, keeping the same indexes. Do not add anything else or change the numbers.\n\n")
	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %q\n", i, text)
	}
	return b.String()
}

// Translate returns one translation per input string.
func (t *Translator) Translate(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := ChatRequest{
		Model: t.cfg.Model,
		Messages: []Message{
			{Role: "user", Content: BuildPrompt(texts, t.cfg.TargetLang)},
		},
		Temperature:    0.1,
		MaxTokens:      4000,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Provider:       t.getProviderPreferences(),
	}

	log.Printf("LLM: sending %d texts for translation to %s", len(texts), t.cfg.TargetLang)
	start := time.Now()
	response, err := t.makeAPIRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in API response")
	}
	log.Printf("LLM: response received in %v", time.Since(start))

	items, err := ParseItems(response.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return Align(items, len(texts))
}

func (t *Translator) makeAPIRequest(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.cfg.APIKey))
	req.Header.Set("X-Title", "Screen Translate Overlay")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s (type: %s, code: %v)", response.Error.Message, response.Error.Type, response.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return &response, nil
}

// ParseItems decodes the model reply. Both {"translations": [...]} and a bare
// array are accepted, with or without a markdown code fence around them.
func ParseItems(content string) ([]Item, error) {
	content = stripCodeFence(content)
	if content == "" {
		return nil, fmt.Errorf("empty translation response")
	}

	if strings.HasPrefix(content, "[") {
		var items []Item
		if err := json.Unmarshal([]byte(content), &items); err != nil {
			return nil, fmt.Errorf("malformed translation array: %w", err)
		}
		return items, nil
	}

	var wrapped struct {
		Translations []Item `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("malformed translation object: %w", err)
	}
	if wrapped.Translations == nil {
		return nil, fmt.Errorf("translation object has no \"translations\" field")
	}
	return wrapped.Translations, nil
}

// Align orders items by index into a slice of length n. Every index in
// [0, n) must be present exactly once.
func Align(items []Item, n int) ([]string, error) {
	out := make([]string, n)
	seen := make([]bool, n)
	for _, it := range items {
		if it.Index < 0 || it.Index >= n {
			return nil, fmt.Errorf("translation index %d out of range [0,%d)", it.Index, n)
		}
		if seen[it.Index] {
			return nil, fmt.Errorf("duplicate translation index %d", it.Index)
		}
		seen[it.Index] = true
		out[it.Index] = it.Text
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("translation response missing index %d", i)
		}
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
