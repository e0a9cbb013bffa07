package pathgen

// Config holds path generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// DefaultConfig returns the sampling settings used for structured output.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.5,
		TopP:        0.9,
		TopK:        30,
	}
}
