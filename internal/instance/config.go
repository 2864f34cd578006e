// Package instance bundles one process-global interpreter instance: its
// stub pool, symbol table, GC collector, root context, and the single
// long-lived trampoline that drives every expression evaluated against
// it (§4.6, §5 "a host may run multiple trampolines... provided each has
// its own pools"). Running more than one Instance concurrently in one
// process is exactly that scenario; New bounds how many may be alive at
// once via a weighted semaphore rather than sharing any mutable state.
package instance

import (
	"renc/internal/gc"
	"renc/internal/level"
)

// Config collects the knobs New accepts, the same shape as the
// teacher's construction-time BuildConfig/TestConfig structs but
// expressed as functional Options rather than exported mutable fields.
type Config struct {
	poolSegmentSize int
	cancel          level.CancelFunc
	levelTrace      level.TraceHook
	gcTrace         gc.TraceFunc
}

// Option mutates a Config at construction time.
type Option func(*Config)

func defaultConfig() Config {
	return Config{poolSegmentSize: 256}
}

// WithPoolSegmentSize sets the stub pool's growth increment (§4.2
// "segments"). Non-positive values fall back to the pool's own default.
func WithPoolSegmentSize(n int) Option {
	return func(c *Config) { c.poolSegmentSize = n }
}

// WithCancelChan arms cooperative cancellation (§5 "Cancellation
// semantics"): the trampoline polls ch once per tick and injects a
// cancellation throw at the top level the first time it is readable.
func WithCancelChan(ch <-chan struct{}) Option {
	return func(c *Config) {
		c.cancel = func() bool {
			select {
			case <-ch:
				return true
			default:
				return false
			}
		}
	}
}

// WithLevelTrace installs a per-tick trampoline diagnostics hook.
func WithLevelTrace(fn level.TraceHook) Option {
	return func(c *Config) { c.levelTrace = fn }
}

// WithGCTrace installs a collector diagnostics hook (GC sweep stats,
// per §11's "opt-in via a TraceFunc").
func WithGCTrace(fn gc.TraceFunc) Option {
	return func(c *Config) { c.gcTrace = fn }
}
