package llm

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
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama3-70b-8192"
)

// ChatConfig configures an OpenAI-compatible chat completions endpoint.
type ChatConfig struct {
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ChatClient implements Completer over /chat/completions.
type ChatClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewChatClient constructs a client. A missing key is reported per call so the
// API can boot without one.
func NewChatClient(cfg ChatConfig) *ChatClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ChatClient{
		endpoint:   base + "/chat/completions",
		model:      model,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion and returns the first choice's content.
func (c *ChatClient) Complete(ctx context.Context, p Prompt) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	messages := make([]chatMessage, 0, 2)
	if p.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: p.User})

	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: p.Temperature})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrRewriteService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrRewriteService, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("%w: request timeout: %w", ErrRewriteService, err)
		}
		return "", fmt.Errorf("%w: %w", ErrRewriteService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrRewriteService, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		return "", fmt.Errorf("%w: response parse: %v", ErrRewriteService, err)
	}
	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(body))
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &StatusError{Code: resp.StatusCode, Body: msg}
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response missing choices", ErrRewriteService)
	}
	return parsed.Choices[0].Message.Content, nil
}

// StatusError is a non-2xx reply from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm http status %d: %s", e.Code, e.Body)
}

// Is makes every StatusError match ErrRewriteService.
func (e *StatusError) Is(target error) bool {
	return target == ErrRewriteService
}
