package llm

import "time"

// Ollama exposes a local model through its OpenAI-compatible endpoint.
type Ollama struct {
	*OpenAICompatible
}

func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL: baseURL,
			Model:   model,
			Timeout: timeout,
		}),
	}
}
