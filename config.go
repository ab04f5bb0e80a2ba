package promise

import "gopkg.in/yaml.v3"

// PanicPolicy controls what a [Loop] does with a panic captured while
// running a Transform or while releasing a dependency, after it has been
// folded into the failing node's [ExceptionOrValue].
type PanicPolicy int

const (
	// PanicPolicyRecord (the default) keeps a captured panic contained: it
	// becomes an error on the node that raised it, and nothing more.
	PanicPolicyRecord PanicPolicy = iota

	// PanicPolicyRepanic lets a captured panic escape Wait as a real Go
	// panic, after being recorded (useful for tests that want a captured
	// programmer error to still fail loudly).
	PanicPolicyRepanic
)

// LoopConfig holds ambient, non-semantic tuning for a [Loop]: none of these
// fields change what the scheduler computes, only how it is observed or how
// it reacts to a captured panic.
type LoopConfig struct {
	// PanicPolicy controls repanic-vs-contain behavior; see PanicPolicy.
	PanicPolicy PanicPolicy `yaml:"panicPolicy"`

	metrics       Metrics
	errorHandler  ErrorHandler
}

func defaultLoopConfig() LoopConfig {
	return LoopConfig{
		PanicPolicy:  PanicPolicyRecord,
		errorHandler: NewLoggingErrorHandler(nil),
	}
}

// LoopOption configures a [Loop] at construction time; see [NewLoop].
type LoopOption func(*LoopConfig)

// WithMetrics attaches m to a Loop, replacing the default [NoopMetrics].
func WithMetrics(m Metrics) LoopOption {
	return func(c *LoopConfig) { c.metrics = m }
}

// WithErrorHandler replaces the Loop's daemon [TaskSet]'s default
// [ErrorHandler].
func WithErrorHandler(h ErrorHandler) LoopOption {
	return func(c *LoopConfig) { c.errorHandler = h }
}

// WithPanicPolicy sets a Loop's [PanicPolicy].
func WithPanicPolicy(p PanicPolicy) LoopOption {
	return func(c *LoopConfig) { c.PanicPolicy = p }
}

// ParseLoopConfig parses a YAML document into a LoopConfig, for callers
// that want to tune a Loop from a configuration file rather than code.
// Recognized keys: panicPolicy ("record" or "repanic").
func ParseLoopConfig(data []byte) (LoopConfig, error) {
	var raw struct {
		PanicPolicy string `yaml:"panicPolicy"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return LoopConfig{}, err
	}

	cfg := defaultLoopConfig()
	switch raw.PanicPolicy {
	case "", "record":
		cfg.PanicPolicy = PanicPolicyRecord
	case "repanic":
		cfg.PanicPolicy = PanicPolicyRepanic
	default:
		return LoopConfig{}, &invalidPanicPolicyError{raw.PanicPolicy}
	}
	return cfg, nil
}

// AsOption turns a parsed LoopConfig into a single LoopOption, so it can be
// passed alongside WithMetrics/WithErrorHandler to [NewLoop].
func (c LoopConfig) AsOption() LoopOption {
	policy := c.PanicPolicy
	return func(dst *LoopConfig) { dst.PanicPolicy = policy }
}

type invalidPanicPolicyError struct{ value string }

func (e *invalidPanicPolicyError) Error() string {
	return "promise: invalid panicPolicy " + quote(e.value) + ": want \"record\" or \"repanic\""
}

func quote(s string) string { return "\"" + s + "\"" }
