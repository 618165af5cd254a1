package factory

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/adapters/bedrock"
	"github.com/rasi23/pingpeek-phishguard/internal/adapters/gemini"
	"github.com/rasi23/pingpeek-phishguard/internal/adapters/openai"
	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/utils"
)

// LLMFactory creates the second-opinion reviewer for suspicious verdicts
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{cfg: cfg, logger: logger, textProcessor: textProcessor}
}

type reviewerBuilder func(*LLMFactory, context.Context) (core.LLMReviewer, error)

var reviewerBuilders = map[string]reviewerBuilder{
	"bedrock": (*LLMFactory).bedrockReviewer,
	"gemini":  (*LLMFactory).geminiReviewer,
	"openai":  (*LLMFactory).openAIReviewer,
}

// CreateReviewer creates the configured reviewer, or nil when review is disabled
func (f *LLMFactory) CreateReviewer(ctx context.Context) (core.LLMReviewer, error) {
	llm := f.cfg.GetLLM()
	if !llm.Enabled {
		return nil, nil
	}
	build, ok := reviewerBuilders[llm.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", llm.Provider)
	}
	f.logger.Info("Creating LLM reviewer", zap.String("provider", llm.Provider))
	return build(f, ctx)
}

// bedrockReviewer resolves credentials through the default AWS chain
func (f *LLMFactory) bedrockReviewer(ctx context.Context) (core.LLMReviewer, error) {
	bc := f.cfg.GetBedrock()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(bc.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}
	return bedrock.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg),
		bc.ModelID, bc.MaxTokens, bc.Temperature, bc.TopP, bc.MaxBodySize,
		f.logger, f.textProcessor), nil
}

func (f *LLMFactory) geminiReviewer(ctx context.Context) (core.LLMReviewer, error) {
	gc := f.cfg.GetGemini()
	if gc.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	return gemini.NewGeminiClient(ctx, gc.APIKey,
		gc.ModelName, gc.MaxTokens, gc.Temperature, gc.TopP, gc.MaxBodySize,
		f.logger, f.textProcessor)
}

// openAIReviewer accepts a base URL without a key for self-hosted
// OpenAI-compatible endpoints
func (f *LLMFactory) openAIReviewer(context.Context) (core.LLMReviewer, error) {
	oc := f.cfg.GetOpenAI()
	if oc.APIKey == "" && oc.BaseURL == "" {
		return nil, errors.New("openai API key is required")
	}
	return openai.NewOpenAIClient(oc.APIKey, oc.BaseURL,
		oc.ModelName, oc.MaxTokens, oc.Temperature, oc.TopP, oc.MaxBodySize,
		f.logger, f.textProcessor), nil
}
