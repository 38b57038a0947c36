package jsonkit

// NumberMode dictates how decoded numbers are represented.
type NumberMode int

const (
	NumberJSONNumber NumberMode = iota // Preserve the literal text as json.Number.
	NumberFloat64                      // Fast mode (with potential precision loss).
)

// Severity expresses how a detected condition is handled.
type Severity int

const (
	Ignore Severity = iota
	Warn            // Log through the package logger and continue.
	Error           // Fail with an Issue.
)

// DecodeOpt bundles decoding options. When several are passed, the last wins.
type DecodeOpt struct {
	// OnDuplicateKey controls duplicate object keys. With Ignore the later
	// value replaces the earlier one in place.
	OnDuplicateKey Severity
	// MaxDepth bounds container nesting; 0 means unlimited.
	MaxDepth   int
	NumberMode NumberMode
	// Relaxed accepts the non-standard superset the writer emits when key
	// quoting is disabled. It is shorthand for Driver: "yaml".
	Relaxed bool
	// Driver selects a tokenizer by name ("go-json", "encoding/json", "yaml").
	// Empty means the package default, see SetDefaultDriver.
	Driver string
}

// WriteOpt bundles per-call writer options. When several are passed, the last
// wins. The zero value is not the default; use DefaultWriteOpt.
type WriteOpt struct {
	// DetectCyclic tracks the beans on the current write path and reacts to
	// back-edges.
	DetectCyclic bool
	// IgnoreCyclic writes null at a back-edge instead of failing.
	IgnoreCyclic bool
	// MaxDepth bounds recursion; values <= 0 fall back to DefaultMaxDepth.
	MaxDepth int
}

// DefaultMaxDepth is the writer recursion ceiling used when none is set.
const DefaultMaxDepth = 1000

// DefaultWriteOpt returns the options used when none are passed: cycle
// detection on, back-edges fail, DefaultMaxDepth.
func DefaultWriteOpt() WriteOpt {
	return WriteOpt{DetectCyclic: true, MaxDepth: DefaultMaxDepth}
}

func lastDecodeOpt(opts []DecodeOpt) DecodeOpt {
	if len(opts) == 0 {
		return DecodeOpt{}
	}
	return opts[len(opts)-1]
}

func lastWriteOpt(opts []WriteOpt) WriteOpt {
	if len(opts) == 0 {
		return DefaultWriteOpt()
	}
	o := opts[len(opts)-1]
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}
