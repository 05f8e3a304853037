// Package logging provides categorized logging for sidefx, backed by zap.
// Every subsystem logs through its own category so a single noisy component
// can be followed in isolation. Until Init is called all helpers are no-ops.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup and wiring
	CategoryHooks    Category = "hooks"    // Hook matching and subprocess execution
	CategoryResearch Category = "research" // Provider routing and search calls
	CategorySession  Category = "session"  // Session store and reaping
	CategoryConfig   Category = "config"   // Config loading and parsing
	CategoryRuntime  Category = "runtime"  // Turn orchestration
)

var (
	mu   sync.RWMutex
	root *zap.Logger = zap.NewNop()
	subs             = make(map[Category]*zap.SugaredLogger)
)

// Init builds the process logger. Call once at startup; verbose enables
// debug-level output. Safe to call again in tests to swap the backend.
func Init(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	SetLogger(logger)
	return nil
}

// SetLogger replaces the backing logger. Tests use this with zaptest.
func SetLogger(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = logger
	subs = make(map[Category]*zap.SugaredLogger)
}

// Get returns the sugared logger for a category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if s, ok := subs[category]; ok {
		mu.RUnlock()
		return s
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if s, ok := subs[category]; ok {
		return s
	}
	s := root.Named(string(category)).Sugar()
	subs[category] = s
	return s
}

// Sync flushes buffered log entries. Called on process shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}

// Per-category helpers, mirroring the call sites' most common levels.

func Boot(format string, args ...interface{})  { Get(CategoryBoot).Infof(format, args...) }
func Hooks(format string, args ...interface{}) { Get(CategoryHooks).Infof(format, args...) }
func HooksDebug(format string, args ...interface{}) {
	Get(CategoryHooks).Debugf(format, args...)
}
func HooksWarn(format string, args ...interface{}) {
	Get(CategoryHooks).Warnf(format, args...)
}
func Research(format string, args ...interface{}) {
	Get(CategoryResearch).Infof(format, args...)
}
func ResearchDebug(format string, args ...interface{}) {
	Get(CategoryResearch).Debugf(format, args...)
}
func ResearchWarn(format string, args ...interface{}) {
	Get(CategoryResearch).Warnf(format, args...)
}
func Session(format string, args ...interface{}) {
	Get(CategorySession).Infof(format, args...)
}
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debugf(format, args...)
}
func Config(format string, args ...interface{}) {
	Get(CategoryConfig).Infof(format, args...)
}
func ConfigWarn(format string, args ...interface{}) {
	Get(CategoryConfig).Warnf(format, args...)
}
func Runtime(format string, args ...interface{}) {
	Get(CategoryRuntime).Infof(format, args...)
}
func RuntimeDebug(format string, args ...interface{}) {
	Get(CategoryRuntime).Debugf(format, args...)
}
