package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/utils"
)

type fakeInvoker struct {
	body    []byte
	err     error
	payload map[string]interface{}
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	if err := json.Unmarshal(params.Body, &f.payload); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func newTestClient(modelID string, invoker modelInvoker) *BedrockClient {
	return &BedrockClient{
		client:        invoker,
		modelID:       modelID,
		maxTokens:     256,
		temperature:   0.1,
		topP:          0.9,
		maxBodySize:   1024,
		logger:        zap.NewNop(),
		textProcessor: utils.NewTextProcessor(zap.NewNop()),
	}
}

func TestReviewPerModelFamily(t *testing.T) {
	answer := `{"phishing": true, "score": 0.8, "explanation": "lookalike domain"}`
	claude3, _ := json.Marshal(map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": answer}},
	})
	claude2, _ := json.Marshal(map[string]string{"completion": " " + answer})
	titan, _ := json.Marshal(map[string]interface{}{
		"results": []map[string]string{{"outputText": answer}},
	})
	generic, _ := json.Marshal(map[string]string{"output": answer})

	tests := []struct {
		modelID    string
		body       []byte
		payloadKey string
	}{
		{"anthropic.claude-3-haiku-20240307-v1:0", claude3, "messages"},
		{"anthropic.claude-v2", claude2, "max_tokens_to_sample"},
		{"amazon.titan-text-express-v1", titan, "textGenerationConfig"},
		{"meta.llama3-8b-instruct-v1:0", generic, "max_tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			invoker := &fakeInvoker{body: tt.body}
			c := newTestClient(tt.modelID, invoker)

			opinion, err := c.Review(context.Background(), &core.ParsedEmail{From: "a@b.example", Body: "confirm"})
			if err != nil {
				t.Fatalf("Review: %v", err)
			}
			if opinion.Score != 0.8 || opinion.Model != tt.modelID {
				t.Errorf("opinion = %+v", opinion)
			}
			if _, ok := invoker.payload[tt.payloadKey]; !ok {
				t.Errorf("payload %v lacks %q", invoker.payload, tt.payloadKey)
			}
		})
	}
}

func TestReviewInvokeError(t *testing.T) {
	c := newTestClient("amazon.titan-text-express-v1", &fakeInvoker{err: errors.New("throttled")})
	if _, err := c.Review(context.Background(), &core.ParsedEmail{Body: "x"}); err == nil {
		t.Error("expected invoke error")
	}
}

func TestExtractTextEmptyTitan(t *testing.T) {
	c := newTestClient("amazon.titan-text-express-v1", nil)
	if _, err := c.extractText([]byte(`{"results": []}`)); err == nil {
		t.Error("expected error for empty Titan results")
	}
}
