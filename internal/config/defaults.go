package config

// Config holds pafill configuration.
type Config struct {
	Gemini GeminiCfg `mapstructure:"gemini" yaml:"gemini"`
	Fill   FillCfg   `mapstructure:"fill" yaml:"fill"`
	Server ServerCfg `mapstructure:"server" yaml:"server"`
}

// GeminiCfg configures the inference service client.
type GeminiCfg struct {
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // per-request bound
	MaxRetries     uint   `mapstructure:"max_retries" yaml:"max_retries"`
}

// FillCfg configures form write-back behavior.
type FillCfg struct {
	// SkipSentinels leaves widgets unfilled when the answer is a
	// missing-information sentinel instead of writing the sentinel text.
	SkipSentinels bool `mapstructure:"skip_sentinels" yaml:"skip_sentinels"`
	// LockOutput additionally produces a non-editable copy on each run.
	LockOutput bool `mapstructure:"lock_output" yaml:"lock_output"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiCfg{
			APIKey:         "${GEMINI_API_KEY}",
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 300,
			MaxRetries:     3,
		},
		Fill: FillCfg{
			SkipSentinels: true,
			LockOutput:    false,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}
