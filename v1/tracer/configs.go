package tracer

// Config defines the tracer provider setup.
type Config struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is recorded as deployment.environment.
	AppEnv string `yaml:"app_env" mapstructure:"app_env" envconfig:"APP_ENV"`

	// EnableExport turns on the OTLP/HTTP exporter. Without it spans are
	// created and propagated but never leave the process.
	EnableExport bool `yaml:"enable_export" mapstructure:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`

	// Endpoint overrides the collector URL. When empty the exporter honours
	// the standard OTEL_EXPORTER_OTLP_* environment variables.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" envconfig:"TRACER_ENDPOINT"`
}
