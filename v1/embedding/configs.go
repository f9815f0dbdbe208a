package embedding

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config selects the tool and the expected shape of its result.
type Config struct {
	// Tool is the name of the embedding tool. Defaults to DefaultTool.
	Tool string `yaml:"tool" mapstructure:"tool" envconfig:"EMBEDDING_TOOL"`

	// Dimension is the expected vector length. 0 accepts any length as long
	// as all vectors of one response agree.
	Dimension int `yaml:"dimension" mapstructure:"dimension" envconfig:"EMBEDDING_DIMENSION"`
}

// NewConfig reads from environment variables.
func NewConfig() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EMBEDDING")
	v.AutomaticEnv()
	v.SetDefault("tool", DefaultTool)
	v.SetDefault("dimension", 0)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("embedding: read config: %w", err)
	}
	return cfg, nil
}

// Validate ensures the fields are usable.
func (c Config) Validate() error {
	if c.Dimension < 0 {
		return fmt.Errorf("embedding: dimension must not be negative, got %d", c.Dimension)
	}
	return nil
}
