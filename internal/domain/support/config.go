package support

import "time"

// Config holds runtime knobs for the answer pipeline.
type Config struct {
	Model             string
	Temperature       float32
	MaxTokens         int
	GenerationTimeout time.Duration
	MaxQuestionRunes  int
	ProductLimit      int
	EscalationText    string
	Prompt            PromptLimits
}

// PromptLimits caps each prompt section, in runes.
type PromptLimits struct {
	Question       int
	ProductContext int
	StoreContext   int
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:             "gpt-4o-mini",
		MaxTokens:         2000,
		GenerationTimeout: 60 * time.Second,
		MaxQuestionRunes:  300,
		ProductLimit:      2,
		EscalationText:    "There are stop words in the text",
		Prompt: PromptLimits{
			Question:       380,
			ProductContext: 3200,
			StoreContext:   500,
		},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = def.GenerationTimeout
	}
	if c.MaxQuestionRunes <= 0 {
		c.MaxQuestionRunes = def.MaxQuestionRunes
	}
	if c.ProductLimit <= 0 {
		c.ProductLimit = def.ProductLimit
	}
	if c.EscalationText == "" {
		c.EscalationText = def.EscalationText
	}
	if c.Prompt.Question <= 0 {
		c.Prompt.Question = def.Prompt.Question
	}
	if c.Prompt.ProductContext <= 0 {
		c.Prompt.ProductContext = def.Prompt.ProductContext
	}
	if c.Prompt.StoreContext <= 0 {
		c.Prompt.StoreContext = def.Prompt.StoreContext
	}
	return c
}
