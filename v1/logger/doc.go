// Package logger provides structured logging for the packages of this module.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Logger interface: the contract other packages depend on
//   - LoggerClient struct: zap-backed implementation of Logger
//   - NewLoggerClient constructor: returns *LoggerClient
//   - FXModule: provides both *LoggerClient and Logger
//
// # Direct Usage (Without FX)
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         "info",
//		EnableTracing: true,
//		ServiceName:   "embedctl",
//	})
//
//	log.Info("tool call finished", nil, map[string]interface{}{
//		"tool":      "embeddings_generate",
//		"transport": "streaming",
//	})
//
//	// trace_id and span_id are added from the active span
//	log.WarnWithContext(ctx, "status poll failed, retrying", err, nil)
//
// # Consumer Interfaces
//
// Packages such as toolcall and embedding declare their own small Logger
// interface with the same method set, so they can be handed a *LoggerClient
// without importing this package.
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true      # add trace_id/span_id in *WithContext methods
//	LOGGER_SERVICE_NAME=embedctl    # "service" field on every entry
//	LOGGER_ENCODING=console         # json (default) or console
//
// # Thread Safety
//
// All methods on LoggerClient are safe for concurrent use.
package logger
