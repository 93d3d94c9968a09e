// Package llm provides the generative-model client used for match scoring
// and document generation. The client is constructed once at startup and
// injected into each collaborator; there are no ambient globals.
package llm

// ModelTier selects the capability level of the model used for a call.
type ModelTier string

const (
	// TierLite is for cheap per-item calls: match scoring, classification.
	TierLite ModelTier = "lite"
	// TierStandard is for full document generation.
	TierStandard ModelTier = "standard"
)

// Config maps tiers to concrete model names.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
}

// Model returns the model name for a tier, falling back to any configured
// tier so a partially filled config still resolves.
func (c *Config) Model(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
