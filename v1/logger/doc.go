// Package logger provides the structured logging implementation used by the
// ArcadeDB driver packages.
//
// It wraps Uber's Zap with a small map-based field API so that the driver
// packages can declare their own minimal Logger interface and stay mockable:
//
//	type Logger interface {
//		Info(msg string, err error, fields ...map[string]interface{})
//		Debug(msg string, err error, fields ...map[string]interface{})
//		Warn(msg string, err error, fields ...map[string]interface{})
//		Error(msg string, err error, fields ...map[string]interface{})
//		Fatal(msg string, err error, fields ...map[string]interface{})
//	}
//
// Basic Usage:
//
//	log := logger.NewLogger(logger.Config{Level: logger.Info})
//	log.Info("connected to ArcadeDB", nil, map[string]interface{}{
//		"host": "localhost",
//		"port": 2480,
//	})
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		arcadedb.FXModule,
//	)
//
// The module registers an OnStop hook that flushes buffered entries via
// Zap's Sync.
package logger
