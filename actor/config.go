/*
 * MIT License
 *
 * Copyright (c) 2024-2026 The Sidereal Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package actor

import "time"

const (
	// DefaultIdleTimeout is how long an instance may be without a turn
	// before it becomes eligible for deactivation.
	DefaultIdleTimeout = time.Hour
	// DefaultScanInterval is how often the idle scan runs.
	DefaultScanInterval = 30 * time.Second
	// DefaultDrainOngoingCallTimeout bounds how long deactivation waits for
	// an in-flight turn before reporting a drain failure.
	DefaultDrainOngoingCallTimeout = time.Minute

	defaultActivationMaxRetries = 5
	defaultActivationTimeout    = time.Second
	activationRetryDelay        = 100 * time.Millisecond
)

// Config carries the per-actor-type runtime settings. It is immutable after
// registration.
type Config struct {
	// idleTimeout specifies after how much inactivity an instance becomes
	// eligible for deactivation.
	idleTimeout time.Duration
	// scanInterval specifies how often instances are scanned for idleness.
	scanInterval time.Duration
	// drainOngoingCallTimeout bounds the wait for an in-flight turn during
	// deactivation. Turns are never preempted; past this bound the
	// deactivation reports a drain failure instead.
	drainOngoingCallTimeout time.Duration
	// drainRebalancedActors states whether the sidecar should drain ongoing
	// calls when it rebalances actors across hosts. It is advertised to the
	// sidecar through the runtime configuration document.
	drainRebalancedActors bool
	// requireExplicitActivation disables lazy activation on first invoke:
	// invoking a not-yet-active id then fails instead of activating it.
	requireExplicitActivation bool
	// activationMaxRetries specifies how many attempts the OnActivate hook
	// gets before the activation is abandoned.
	activationMaxRetries int
	// activationTimeout bounds one OnActivate attempt.
	activationTimeout time.Duration
}

// ConfigOption configures an actor type registration.
type ConfigOption func(*Config)

// NewConfig creates a Config with validated defaults and applies the given
// options.
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		idleTimeout:             DefaultIdleTimeout,
		scanInterval:            DefaultScanInterval,
		drainOngoingCallTimeout: DefaultDrainOngoingCallTimeout,
		drainRebalancedActors:   true,
		activationMaxRetries:    defaultActivationMaxRetries,
		activationTimeout:       defaultActivationTimeout,
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithIdleTimeout sets after how much inactivity an instance becomes
// eligible for deactivation. The default is one hour.
func WithIdleTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		if timeout > 0 {
			c.idleTimeout = timeout
		}
	}
}

// WithScanInterval sets how often instances are scanned for idleness. The
// default is 30s.
func WithScanInterval(interval time.Duration) ConfigOption {
	return func(c *Config) {
		if interval > 0 {
			c.scanInterval = interval
		}
	}
}

// WithDrainOngoingCallTimeout bounds how long deactivation waits for an
// in-flight turn. The default is one minute.
func WithDrainOngoingCallTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		if timeout > 0 {
			c.drainOngoingCallTimeout = timeout
		}
	}
}

// WithDrainRebalancedActors advertises to the sidecar whether rebalanced
// actors should be drained. The default is true.
func WithDrainRebalancedActors(drain bool) ConfigOption {
	return func(c *Config) {
		c.drainRebalancedActors = drain
	}
}

// WithRequireExplicitActivation disables lazy activation on first invoke for
// the actor type.
func WithRequireExplicitActivation() ConfigOption {
	return func(c *Config) {
		c.requireExplicitActivation = true
	}
}

// WithActivationMaxRetries sets how many attempts the OnActivate hook gets.
// The default is 5.
func WithActivationMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		if maxRetries > 0 {
			c.activationMaxRetries = maxRetries
		}
	}
}

// WithActivationTimeout bounds a single OnActivate attempt. The default is
// one second.
func WithActivationTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		if timeout > 0 {
			c.activationTimeout = timeout
		}
	}
}

// IdleTimeout returns the configured idle timeout.
func (c *Config) IdleTimeout() time.Duration {
	return c.idleTimeout
}

// ScanInterval returns the configured idle scan interval.
func (c *Config) ScanInterval() time.Duration {
	return c.scanInterval
}

// DrainOngoingCallTimeout returns the configured drain bound.
func (c *Config) DrainOngoingCallTimeout() time.Duration {
	return c.drainOngoingCallTimeout
}

// DrainRebalancedActors returns whether rebalanced actors are drained.
func (c *Config) DrainRebalancedActors() bool {
	return c.drainRebalancedActors
}

// RequireExplicitActivation returns whether lazy activation is disabled.
func (c *Config) RequireExplicitActivation() bool {
	return c.requireExplicitActivation
}

func (c *Config) clone() *Config {
	cloned := *c
	return &cloned
}

// equal reports whether two configs advertise the same sidecar-facing
// settings. Used to decide which types need an entity override in the
// runtime configuration document.
func (c *Config) equal(other *Config) bool {
	return c.idleTimeout == other.idleTimeout &&
		c.scanInterval == other.scanInterval &&
		c.drainOngoingCallTimeout == other.drainOngoingCallTimeout &&
		c.drainRebalancedActors == other.drainRebalancedActors
}

// RuntimeConfig is the configuration document advertised to the sidecar. It
// lists the registered actor types and the runtime defaults, plus per-type
// overrides for types registered with settings that differ from the
// defaults. Durations are rendered as Go duration strings.
type RuntimeConfig struct {
	Entities                []string       `json:"entities"`
	ActorIdleTimeout        string         `json:"actorIdleTimeout"`
	ActorScanInterval       string         `json:"actorScanInterval"`
	DrainOngoingCallTimeout string         `json:"drainOngoingCallTimeout"`
	DrainRebalancedActors   bool           `json:"drainRebalancedActors"`
	EntitiesConfig          []EntityConfig `json:"entitiesConfig,omitempty"`
}

// EntityConfig is a per-type override within the runtime configuration
// document.
type EntityConfig struct {
	Entities                []string `json:"entities"`
	ActorIdleTimeout        string   `json:"actorIdleTimeout,omitempty"`
	ActorScanInterval       string   `json:"actorScanInterval,omitempty"`
	DrainOngoingCallTimeout string   `json:"drainOngoingCallTimeout,omitempty"`
	DrainRebalancedActors   bool     `json:"drainRebalancedActors"`
}
