package entity

// GenerationConfig controls decoding of a single model call
type GenerationConfig struct {
	CandidateCount  int32
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultGenerationConfig returns deterministic single-candidate decoding
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		CandidateCount:  1,
		Temperature:     0,
		MaxOutputTokens: 300,
	}
}
