package config

const (
	defaultConfigPath       = "~/.config/suimu/config.toml"
	projectConfigName       = "suimu.toml"
	defaultRuntimeDir       = "~/.local/share/suimu"
	socketFileName          = "suimu.sock"
	historyFileName         = "history.db"
	defaultHistoryRetention = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 14
	envLogLevel             = "SUIMU_LOG_LEVEL"
	envLogFormat            = "SUIMU_LOG_FORMAT"
	envHTTPBind             = "SUIMU_HTTP_BIND"
	maxHistoryRetentionDays = 3650
	maxLogRetentionDays     = 3650
)

// Default returns a Config populated with defaults. Paths are left
// unexpanded until Load normalizes them.
func Default() Config {
	return Config{
		Paths: Paths{
			RuntimeDir: defaultRuntimeDir,
		},
		Server: Server{
			Metrics: true,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetention,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
