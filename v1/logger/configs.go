package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config defines how the logger is built.
type Config struct {
	// Level is one of debug, info, warning or error. Anything else means info.
	Level string `yaml:"level" mapstructure:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// EnableTracing adds trace_id and span_id of the active OpenTelemetry span
	// to entries written through the *WithContext methods.
	EnableTracing bool `yaml:"enable_tracing" mapstructure:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" envconfig:"LOGGER_SERVICE_NAME"`

	// Encoding is "json" (default) or "console".
	Encoding string `yaml:"encoding" mapstructure:"encoding" envconfig:"LOGGER_ENCODING"`
}
