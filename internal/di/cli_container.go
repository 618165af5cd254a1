package di

import (
	"flag"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/config"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/factory"
	"github.com/rasi23/pingpeek-phishguard/internal/logging"
	"github.com/rasi23/pingpeek-phishguard/internal/ports"
	"github.com/rasi23/pingpeek-phishguard/internal/service"
)

// CLIFlags are the phish-detector command line options
type CLIFlags struct {
	Mode          string
	IntelProvider string
	IntelURL      string
	IntelAPIKey   string
	Whitelist     string

	// Second-opinion review. The sampling flags apply to whichever
	// provider is selected.
	Review      bool
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	BedrockRegion   string
	BedrockModelID  string
	GeminiAPIKey    string
	GeminiModelName string
	OpenAIAPIKey    string
	OpenAIModelName string

	InputFile  string
	JSON       bool
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses os.Args, exiting on bad input like flag.Parse does
func ParseFlags() *CLIFlags {
	flags, _ := ParseArgs(flag.CommandLine, os.Args[1:])
	return flags
}

// ParseArgs registers the CLI flags on fs and parses args
func ParseArgs(fs *flag.FlagSet, args []string) (*CLIFlags, error) {
	f := &CLIFlags{}

	fs.StringVar(&f.Mode, "mode", "weighted", "Classifier mode (weighted, legacy)")
	fs.StringVar(&f.IntelProvider, "intel", "static", "Threat intel provider (static, http, none)")
	fs.StringVar(&f.IntelURL, "intel-url", "https://www.virustotal.com/api/v3", "Base URL of the http intel provider")
	fs.StringVar(&f.IntelAPIKey, "intel-api-key", "", "API key of the http intel provider")
	fs.StringVar(&f.Whitelist, "whitelist", "", "Comma-separated sender domains that skip analysis")

	fs.BoolVar(&f.Review, "review", false, "Ask an LLM for a second opinion on suspicious emails")
	fs.StringVar(&f.Provider, "provider", "openai", "LLM provider (bedrock, gemini, openai)")
	fs.IntVar(&f.MaxTokens, "max-tokens", 1000, "Maximum tokens in the LLM response")
	fs.Float64Var(&f.Temperature, "temperature", 0.1, "LLM sampling temperature")
	fs.Float64Var(&f.TopP, "top-p", 0.9, "LLM nucleus sampling")
	fs.IntVar(&f.MaxBodySize, "max-body-size", 4096, "Bytes of body sent to the LLM")

	fs.StringVar(&f.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	fs.StringVar(&f.BedrockModelID, "bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")
	fs.StringVar(&f.GeminiAPIKey, "gemini-api-key", "", "Google Gemini API key")
	fs.StringVar(&f.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")
	fs.StringVar(&f.OpenAIAPIKey, "openai-api-key", "", "OpenAI API key")
	fs.StringVar(&f.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")

	fs.StringVar(&f.InputFile, "file", "", "Email file to analyse, stdin when empty")
	fs.BoolVar(&f.JSON, "json", false, "Print the report as JSON")
	fs.BoolVar(&f.Verbose, "verbose", false, "Log at debug level")
	fs.BoolVar(&f.JSONLog, "json-log", false, "Log as JSON")
	fs.StringVar(&f.ConfigFile, "config", "", "Config file; replaces the analysis flags")

	return f, fs.Parse(args)
}

// BuildCLIContainer wires a one-shot analysis: no cache, no store, and the
// cli filter printing to stdout
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		func() *CLIFlags { return flags },
		func(f *CLIFlags) (*zap.Logger, error) {
			return logging.InitConsoleLogger(f.Verbose, f.JSONLog)
		},
		cliConfig,
		factory.NewLLMFactory,
		factory.NewIntelFactory,
		factory.NewFilterFactory,
		func() core.IntelCache { return nil },
		func() core.EmailRepository { return nil },
		func(cfg *config.Config) service.Options {
			return service.Options{
				IntelTimeout:     cfg.GetIntel().Timeout,
				MaxBodySize:      cfg.GetClassifier().MaxBodySize,
				ReviewSuspicious: cfg.GetLLM().ReviewSuspicious,
			}
		},
		service.NewPhishingService,
		func(f *factory.FilterFactory) (ports.EmailFilter, error) {
			return f.CreateEmailFilter()
		},
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, err
		}
	}
	if err := provideAnalysis(container); err != nil {
		return nil, err
	}
	return container, nil
}

// cliConfig loads --config when given, otherwise builds a config from the
// flags. Output settings always come from the flags.
func cliConfig(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
	cfg := createConfigFromFlags(flags)
	if flags.ConfigFile != "" {
		loaded, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded configuration from file",
			zap.String("file", loaded.GetViper().ConfigFileUsed()))
		cfg = loaded
	}
	v := cfg.GetViper()
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cli.json", flags.JSON)
	return cfg, nil
}

// createConfigFromFlags maps the analysis flags onto config keys
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("server.filter_type", "cli")
	v.Set("classifier.mode", flags.Mode)
	v.Set("intel.provider", flags.IntelProvider)
	v.Set("intel.base_url", flags.IntelURL)
	v.Set("intel.api_key", flags.IntelAPIKey)
	v.Set("spam.whitelisted_domains", splitList(flags.Whitelist))

	v.Set("llm.enabled", flags.Review)
	v.Set("llm.provider", flags.Provider)

	var specific map[string]interface{}
	switch flags.Provider {
	case "bedrock":
		specific = map[string]interface{}{"region": flags.BedrockRegion, "model_id": flags.BedrockModelID}
	case "gemini":
		specific = map[string]interface{}{"api_key": flags.GeminiAPIKey, "model_name": flags.GeminiModelName}
	case "openai":
		specific = map[string]interface{}{"api_key": flags.OpenAIAPIKey, "model_name": flags.OpenAIModelName}
	default:
		return config.NewFromViper(v)
	}
	specific["max_tokens"] = flags.MaxTokens
	specific["temperature"] = flags.Temperature
	specific["top_p"] = flags.TopP
	specific["max_body_size"] = flags.MaxBodySize
	for key, value := range specific {
		v.Set(flags.Provider+"."+key, value)
	}

	return config.NewFromViper(v)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
