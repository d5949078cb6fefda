// Package llm wraps the generative model endpoint used to produce habit
// blueprints from source content.
package llm

// Config holds the generation settings applied to every blueprint request.
type Config struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the standard generation configuration.
func DefaultConfig() *Config {
	return &Config{
		Model:           "gemini-2.5-flash",
		Temperature:     0.7,
		MaxOutputTokens: 8192,
	}
}

// WithModel returns a copy of the config using a different model name.
func (c *Config) WithModel(model string) *Config {
	out := *c
	if model != "" {
		out.Model = model
	}
	return &out
}
