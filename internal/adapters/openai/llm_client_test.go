package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/utils"
)

func TestReviewAgainstCompatibleEndpoint(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "local-model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {
				"role": "assistant",
				"content": "{\"phishing\": true, \"score\": 1.7, \"explanation\": \"credential lure\"}"
			}}]
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("", srv.URL+"/v1", "local-model", 200, 0.1, 0.9, 10,
		zap.NewNop(), utils.NewTextProcessor(nil))

	opinion, err := c.Review(context.Background(), &core.ParsedEmail{
		From:    "alert@secure-paypal.co",
		Subject: "Verify",
		Body:    "Verify your password right now please",
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if opinion.Model != "local-model" || opinion.Score != 1 || opinion.Explanation != "credential lure" {
		t.Errorf("opinion = %+v", opinion)
	}

	if gotBody["model"] != "local-model" {
		t.Errorf("request model = %v", gotBody["model"])
	}
	msgs, _ := gotBody["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
	user, _ := msgs[1].(map[string]interface{})
	if content, _ := user["content"].(string); !strings.Contains(content, utils.TruncationMarker) {
		t.Errorf("body was not truncated to max_body_size:\n%s", content)
	}
}

func TestReviewEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL, "m", 10, 0, 1, 0, zap.NewNop(), utils.NewTextProcessor(nil))
	if _, err := c.Review(context.Background(), &core.ParsedEmail{Body: "x"}); err == nil {
		t.Error("expected an error for a response without choices")
	}
}
