package toolcall

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultPollInterval   = time.Second
	DefaultMaxWait        = 5 * time.Minute
	DefaultMaxIdleConns   = 16
	DefaultStatusTool     = "embeddings_get_status"
	DefaultStatusArgument = "task_id"

	envPrefix = "TOOLCALL"
)

// StreamMode selects the URL convention of the streaming endpoint.
type StreamMode string

const (
	// StreamModeAuto derives the convention from StreamURL: a path ending in
	// "/sse" is dedicated, anything else combined.
	StreamModeAuto StreamMode = "auto"

	// StreamModeCombined POSTs the request and reads the event stream from
	// the response body.
	StreamModeCombined StreamMode = "combined"

	// StreamModeDedicated opens the stream with GET, waits for the "endpoint"
	// event and POSTs the request to the announced URL.
	StreamModeDedicated StreamMode = "dedicated"
)

// Config defines the endpoints and timing of a tool-call Client.
//
// Every field can be set from the environment with the TOOLCALL_ prefix,
// e.g. TOOLCALL_DIRECT_URL or TOOLCALL_MAX_WAIT=2m.
type Config struct {
	// DirectURL is the plain request/response JSON-RPC endpoint.
	DirectURL string `yaml:"direct_url" mapstructure:"direct_url" envconfig:"TOOLCALL_DIRECT_URL"`

	// StreamURL is the event-stream endpoint used when DirectURL answers
	// 404 or 405. Leave empty to disable the fallback.
	StreamURL string `yaml:"stream_url" mapstructure:"stream_url" envconfig:"TOOLCALL_STREAM_URL"`

	// StreamMode is auto, combined or dedicated. Empty means auto.
	StreamMode StreamMode `yaml:"stream_mode" mapstructure:"stream_mode" envconfig:"TOOLCALL_STREAM_MODE"`

	// ServiceToken is sent as a Bearer token when set.
	ServiceToken string `yaml:"service_token" mapstructure:"service_token" envconfig:"TOOLCALL_SERVICE_TOKEN"`

	// RequestTimeout bounds every single HTTP exchange.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout" envconfig:"TOOLCALL_REQUEST_TIMEOUT"`

	// PollInterval is the pause between two job status checks.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" envconfig:"TOOLCALL_POLL_INTERVAL"`

	// MaxWait is the deadline for an asynchronous job. Must exceed PollInterval.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait" envconfig:"TOOLCALL_MAX_WAIT"`

	// MaxIdleConns is the number of idle connections kept per host.
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns" envconfig:"TOOLCALL_MAX_IDLE_CONNS"`

	// StatusTool is the tool polled for job status.
	StatusTool string `yaml:"status_tool" mapstructure:"status_tool" envconfig:"TOOLCALL_STATUS_TOOL"`

	// StatusArgument is the argument of StatusTool that carries the job handle.
	StatusArgument string `yaml:"status_argument" mapstructure:"status_argument" envconfig:"TOOLCALL_STATUS_ARGUMENT"`
}

// NewConfig reads the configuration from TOOLCALL_* environment variables,
// falling back to the defaults for unset values.
func NewConfig() (Config, error) {
	return decodeConfig(newViper())
}

// LoadConfig reads a YAML file. Environment variables override its values.
func LoadConfig(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
	}
	return decodeConfig(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	v.SetDefault("direct_url", "")
	v.SetDefault("stream_url", "")
	v.SetDefault("stream_mode", string(StreamModeAuto))
	v.SetDefault("service_token", "")
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("max_wait", DefaultMaxWait)
	v.SetDefault("max_idle_conns", DefaultMaxIdleConns)
	v.SetDefault("status_tool", DefaultStatusTool)
	v.SetDefault("status_argument", DefaultStatusArgument)
	return v
}

func decodeConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// withDefaults fills zero values with the package defaults.
func (c Config) withDefaults() Config {
	if c.StreamMode == "" {
		c.StreamMode = StreamModeAuto
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxWait == 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.StatusTool == "" {
		c.StatusTool = DefaultStatusTool
	}
	if c.StatusArgument == "" {
		c.StatusArgument = DefaultStatusArgument
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()

	if c.DirectURL == "" && c.StreamURL == "" {
		return fmt.Errorf("%w: one of direct_url or stream_url is required", ErrInvalidConfig)
	}
	for name, raw := range map[string]string{"direct_url": c.DirectURL, "stream_url": c.StreamURL} {
		if raw == "" {
			continue
		}
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s %q is not an http(s) URL", ErrInvalidConfig, name, raw)
		}
	}

	switch c.StreamMode {
	case StreamModeAuto, StreamModeCombined, StreamModeDedicated:
	default:
		return fmt.Errorf("%w: unknown stream_mode %q", ErrInvalidConfig, c.StreamMode)
	}

	if c.RequestTimeout < 0 || c.PollInterval < 0 || c.MaxWait < 0 || c.MaxIdleConns < 0 {
		return fmt.Errorf("%w: durations and max_idle_conns must not be negative", ErrInvalidConfig)
	}
	if c.PollInterval >= c.MaxWait {
		return fmt.Errorf("%w: poll_interval %s must be shorter than max_wait %s", ErrInvalidConfig, c.PollInterval, c.MaxWait)
	}
	return nil
}

// StreamVariant resolves StreamMode to combined or dedicated. The result
// only depends on the configuration.
func (c Config) StreamVariant() StreamMode {
	switch c.StreamMode {
	case StreamModeCombined, StreamModeDedicated:
		return c.StreamMode
	}
	u, err := url.Parse(c.StreamURL)
	if err == nil && strings.HasSuffix(strings.TrimRight(u.Path, "/"), "/sse") {
		return StreamModeDedicated
	}
	return StreamModeCombined
}
