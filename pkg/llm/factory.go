package llm

import (
	"fmt"
	"os"
	"strings"
)

// Provider names a supported LLM backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Factory creates LLM instances based on provider.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLM creates an LLM instance from an explicit provider and config.
func (f *Factory) CreateLLM(provider Provider, config map[string]string) (LLM, error) {
	apiKey := config["api_key"]
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", provider)
	}

	switch provider {
	case ProviderGemini:
		if model := config["model"]; model != "" {
			return NewGeminiWithModel(apiKey, model), nil
		}
		return NewGemini(apiKey), nil

	case ProviderOpenAI:
		if model := config["model"]; model != "" {
			return NewOpenAIWithModel(apiKey, model), nil
		}
		return NewOpenAI(apiKey), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// GetAvailableProviders lists every supported backend.
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI}
}

// CreateFromEnv builds an LLM from environment variables, honoring the
// optional provider and model overrides first.
func CreateFromEnv(providerOverride, modelOverride string) (LLM, error) {
	factory := NewFactory()

	provider := strings.ToLower(providerOverride)
	if provider == "" {
		provider = strings.ToLower(os.Getenv("LLM_PROVIDER"))
	}

	switch provider {
	case "openai":
		model := modelOverride
		if model == "" {
			model = os.Getenv("OPENAI_MODEL")
		}
		return factory.CreateLLM(ProviderOpenAI, map[string]string{
			"api_key": os.Getenv("OPENAI_API_KEY"),
			"model":   model,
		})

	case "gemini", "":
		// Gemini is the default provider.
		model := modelOverride
		if model == "" {
			model = os.Getenv("GEMINI_MODEL")
		}
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		return factory.CreateLLM(ProviderGemini, map[string]string{
			"api_key": apiKey,
			"model":   model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %s (supported: gemini, openai)", provider)
	}
}
