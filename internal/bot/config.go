package bot

import (
	"os"
	"strconv"
)

// Config represents the configuration for the bot
type Config struct {
	// Maximum number of due words pulled into one review session
	WordsPerSession int
	// Whether the grammar-check practice flow is available
	GrammarEnabled bool
	// Whether the reminder scheduler runs
	SchedulerEnabled bool
}

// DefaultConfig returns the default bot configuration, with environment
// overrides applied
func DefaultConfig() *Config {
	cfg := &Config{
		WordsPerSession:  20,
		GrammarEnabled:   os.Getenv("OPENAI_API_KEY") != "",
		SchedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
	}
	if v := os.Getenv("WORDS_PER_SESSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WordsPerSession = n
		}
	}
	return cfg
}
