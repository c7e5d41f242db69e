// Package logger provides structured logging for ytcipher.
//
// Features:
//   - Multiple log levels (TRACE, DEBUG, INFO, WARN, ERROR)
//   - Component-based filtering
//   - Multiple output formats (text, JSON, color)
//   - Size/age based rotation for file outputs
//
// Usage:
//
//	log := logger.WithComponent(logger.ComponentPlayer)
//	log.Warn("No operations detected", map[string]interface{}{
//		"script": "/s/player/abc/base.js",
//	})
//
//	cfg := logger.ApplyEnvironment(logger.DefaultLogConfig())
//	l, err := logger.CreateLoggerFromConfig(cfg)
//	if err == nil {
//		logger.SetGlobalLogger(l)
//	}
//
// Components:
//   - ComponentApp: command line tool
//   - ComponentCipher: script recognition and verification
//   - ComponentPlayer: player script fetching and cipher cache
//   - ComponentFormat: playback and manifest URL rewriting
//   - ComponentClient: HTTP client
package logger
