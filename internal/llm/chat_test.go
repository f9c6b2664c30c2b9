package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestChatClientSendsBearerAndPrompt(t *testing.T) {
	var mu sync.Mutex
	var gotAuth, gotPath string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		mu.Lock()
		defer mu.Unlock()
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer server.Close()

	client := NewChatClient(ChatConfig{BaseURL: server.URL + "/openai/v1/", APIKey: "gsk-test"})
	out, err := client.Complete(context.Background(), Prompt{System: "sys", User: "user", Temperature: 0.7})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello" {
		t.Fatalf("unexpected content %q", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotAuth != "Bearer gsk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/openai/v1/chat/completions" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody.Model != DefaultModel || gotBody.Temperature != 0.7 {
		t.Fatalf("unexpected request %+v", gotBody)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Content != "user" {
		t.Fatalf("unexpected messages %+v", gotBody.Messages)
	}
}

func TestChatClientMissingKey(t *testing.T) {
	client := NewChatClient(ChatConfig{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Complete(context.Background(), Prompt{User: "x"}); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestChatClientStatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"over capacity","type":"server_error"}}`))
	}))
	defer server.Close()

	client := NewChatClient(ChatConfig{BaseURL: server.URL, APIKey: "k"})
	_, err := client.Complete(context.Background(), Prompt{User: "x"})
	if !errors.Is(err, ErrRewriteService) {
		t.Fatalf("expected ErrRewriteService, got %v", err)
	}
	var status *StatusError
	if !errors.As(err, &status) || status.Code != http.StatusServiceUnavailable || status.Body != "over capacity" {
		t.Fatalf("unexpected status error %#v", err)
	}
}

func TestChatClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewChatClient(ChatConfig{BaseURL: url, APIKey: "k"})
	if _, err := client.Complete(context.Background(), Prompt{User: "x"}); !errors.Is(err, ErrRewriteService) {
		t.Fatalf("expected ErrRewriteService, got %v", err)
	}
}
