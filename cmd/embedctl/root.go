package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Aleph-Alpha/embedtools/v1/embedding"
	"github.com/Aleph-Alpha/embedtools/v1/logger"
	"github.com/Aleph-Alpha/embedtools/v1/metrics"
	"github.com/Aleph-Alpha/embedtools/v1/toolcall"
	"github.com/Aleph-Alpha/embedtools/v1/tracer"
)

const serviceName = "embedctl"

// options holds the persistent flags. Every flag can also be set through an
// EMBEDCTL_* environment variable, e.g. EMBEDCTL_LOG_LEVEL=debug.
type options struct {
	v *viper.Viper
}

func (o options) configPath() string  { return o.v.GetString("config") }
func (o options) logLevel() string    { return o.v.GetString("log-level") }
func (o options) output() string      { return o.v.GetString("output") }
func (o options) metricsAddr() string { return o.v.GetString("metrics-addr") }
func (o options) traceExport() bool   { return o.v.GetBool("trace-export") }

func newRootCmd() *cobra.Command {
	opts := options{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "embedctl",
		Short: "Call tools on a JSON-RPC tool server",
		Long: `embedctl sends tools/call requests to a tool server. It tries the direct
endpoint first, falls back to the event stream when the server does not
support direct calls, and waits for asynchronous jobs to finish.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output() {
			case outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q, want json or yaml", opts.output())
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "YAML file with the toolcall settings (direct_url, stream_url, ...)")
	flags.String("log-level", logger.Warning, "log level: debug, info, warning or error")
	flags.StringP("output", "o", outputJSON, "output format: json or yaml")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	flags.Bool("trace-export", false, "export spans over OTLP/HTTP")

	opts.v.SetEnvPrefix("EMBEDCTL")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()
	_ = opts.v.BindPFlags(flags)

	cmd.AddCommand(newGenerateCmd(opts), newCallCmd(opts))
	return cmd
}

// toolcallConfig loads the file given with --config, or the environment
// when no file is given.
func (o options) toolcallConfig() (toolcall.Config, error) {
	if path := o.configPath(); path != "" {
		return toolcall.LoadConfig(path)
	}
	return toolcall.NewConfig()
}

// traceCarrier collects the W3C trace headers handed over by a parent
// process through TRACEPARENT, TRACESTATE and BAGGAGE.
func traceCarrier() map[string]string {
	carrier := map[string]string{}
	for _, key := range []string{"traceparent", "tracestate", "baggage"} {
		if value := os.Getenv(strings.ToUpper(key)); value != "" {
			carrier[key] = value
		}
	}
	return carrier
}

// run builds the application graph, starts it, hands the populated targets
// to fn and stops the application again. fn runs under the trace found in
// the environment, if any.
func run(ctx context.Context, opts options, fn func(context.Context) error, targets ...interface{}) error {
	var tr *tracer.Tracer
	targets = append(targets, &tr)

	app := fx.New(
		fx.Supply(
			logger.Config{Level: opts.logLevel(), ServiceName: serviceName, EnableTracing: true},
			metrics.Config{Address: opts.metricsAddr(), ServiceName: serviceName},
			tracer.Config{ServiceName: serviceName, EnableExport: opts.traceExport()},
		),
		fx.Provide(opts.toolcallConfig),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
		logger.FXModule,
		tracer.FXModule,
		metrics.FXModule,
		toolcall.FXModule,
		embedding.FXModule,
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return err
	}
	runErr := fn(tr.SetCarrierOnContext(ctx, traceCarrier()))

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
