package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ablewear/ablewear/config"
)

func gatewayConfig(url string) config.SuggestConfig {
	return config.SuggestConfig{
		Enabled:    true,
		GatewayURL: url,
		ApiKey:     "test-key",
		TextModel:  "text-model",
		ImageModel: "image-model",
	}
}

func completionBody(content string, imageURL string) map[string]interface{} {
	msg := map[string]interface{}{"content": content}
	if imageURL != "" {
		msg["images"] = []map[string]interface{}{
			{"image_url": map[string]string{"url": imageURL}},
		}
	}
	return map[string]interface{}{
		"choices": []map[string]interface{}{{"message": msg}},
	}
}

func TestSuggestReturnsTextAndImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if req.Model == "image-model" {
			json.NewEncoder(w).Encode(completionBody("", "data:image/png;base64,xxxx"))
			return
		}
		json.NewEncoder(w).Encode(completionBody("Try a magnetic closure shirt.", ""))
	}))
	defer srv.Close()

	client := NewGatewayClient(gatewayConfig(srv.URL))
	resp, err := client.Suggest(context.Background(), "wheelchair user, limited grip")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(resp.Suggestions, "magnetic closure") {
		t.Fatalf("unexpected suggestions: %q", resp.Suggestions)
	}
	if resp.Image == "" {
		t.Fatal("expected an image URL")
	}
}

func TestSuggestDegradesToTextWhenImageFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model == "image-model" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody("Elastic waistband trousers.", ""))
	}))
	defer srv.Close()

	client := NewGatewayClient(gatewayConfig(srv.URL))
	resp, err := client.Suggest(context.Background(), "easy dressing")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if resp.Suggestions == "" {
		t.Fatal("expected text suggestions")
	}
	if resp.Image != "" {
		t.Fatalf("expected no image, got %q", resp.Image)
	}
}

func TestSuggestGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGatewayClient(gatewayConfig(srv.URL))
	_, err := client.Suggest(context.Background(), "anything")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestMockClientDefaults(t *testing.T) {
	client := &MockClient{}
	resp, err := client.Suggest(context.Background(), "anything")
	if err != nil {
		t.Fatalf("mock suggest: %v", err)
	}
	if resp.Suggestions == "" {
		t.Fatal("expected default suggestions")
	}
}
