package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved endpoints
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Equitas", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("llm_provider", string(config.LLM.Provider)).
		Str("data_dir", config.Data.Dir).
		Str("badger_path", config.Storage.Badger.Path).
		Msg("Equitas starting")
}
