package metrics

// Config defines the metrics registry and the server exposing it.
type Config struct {
	// Address is the listen address of the /metrics server, e.g. ":9090".
	// An empty address disables the server; metrics are still recorded.
	Address string `yaml:"address" mapstructure:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" mapstructure:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// ServiceName is attached to every metric as the "service" label.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}
