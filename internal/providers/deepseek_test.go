package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newChatTestServer(t *testing.T, content string, handler func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler != nil {
			handler(r)
		}
		resp := map[string]any{
			"id":    "test-id",
			"model": "deepseek-chat",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{
				"prompt_tokens":     10,
				"completion_tokens": 8,
				"total_tokens":      18,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewDeepSeekClient(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		_, err := NewDeepSeekClient(DeepSeekConfig{})
		if err == nil {
			t.Fatal("expected error for missing API key")
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		c, err := NewDeepSeekClient(DeepSeekConfig{APIKey: "test-key"})
		if err != nil {
			t.Fatalf("NewDeepSeekClient() error = %v", err)
		}
		if c.Name() != DeepSeekName {
			t.Errorf("Name() = %q, want %q", c.Name(), DeepSeekName)
		}
		if c.model != "deepseek-chat" {
			t.Errorf("model = %q", c.model)
		}
	})
}

func TestDeepSeekClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		var gotPath, gotAuth string
		server := newChatTestServer(t, "Hello from Nana!", func(r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
		})
		defer server.Close()

		client, err := NewDeepSeekClient(DeepSeekConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})
		if err != nil {
			t.Fatalf("NewDeepSeekClient() error = %v", err)
		}

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{
				{Role: "system", Content: "You are Nana."},
				{Role: "user", Content: "Hello"},
			},
			Temperature: 0.7,
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "Hello from Nana!" {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 18 {
			t.Errorf("TotalTokens = %d, want 18", result.TotalTokens)
		}
		if !strings.HasSuffix(gotPath, "/chat/completions") {
			t.Errorf("unexpected path: %s", gotPath)
		}
		if gotAuth != "Bearer test-key" {
			t.Errorf("unexpected authorization: %s", gotAuth)
		}
	})

	t.Run("debug logging reports limiter status", func(t *testing.T) {
		server := newChatTestServer(t, "ok", nil)
		defer server.Close()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))

		client, err := NewDeepSeekClient(DeepSeekConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
			Logger:  logger,
		})
		if err != nil {
			t.Fatalf("NewDeepSeekClient() error = %v", err)
		}

		if _, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		}); err != nil {
			t.Fatalf("Chat() error = %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "rate limiter status") {
			t.Errorf("expected limiter status in debug log, got: %s", out)
		}
		if !strings.Contains(out, "total_consumed=1") {
			t.Errorf("expected total_consumed=1 in debug log, got: %s", out)
		}
	})

	t.Run("timeout surfaces as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client, err := NewDeepSeekClient(DeepSeekConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})
		if err != nil {
			t.Fatalf("NewDeepSeekClient() error = %v", err)
		}

		_, err = client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
			Timeout:  20 * time.Millisecond,
		})
		if err == nil {
			t.Fatal("expected timeout error")
		}
	})
}
