// Package launch implements the launch orchestration core: ring-buffered
// process output collectors, the launch diagnostics event log, the
// readiness timeline, and an environment sanitizer (SPEC_FULL.md §4.6),
// plus the orchestrator that drives dev-server spawn, driver launch,
// and CDP attach fallback (orchestrator.go). Grounded on the teacher's
// pkg/browser/adapters/servo/runtime.go for the subprocess-spawn +
// stdout/stderr pipe idiom, generalized to a ring buffer instead of an
// unbounded log.
package launch

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultLineBufferCapacity is the default per-process line collector size.
	DefaultLineBufferCapacity = 160
	// MinLineBufferCapacity is the smallest allowed line collector size.
	MinLineBufferCapacity = 10
	// DefaultEventLogCapacity is the default launch event log size.
	DefaultEventLogCapacity = 300
)

// LineCollector is a ring-buffered accumulator of process output lines,
// splitting on \r?\n with carry-over for partial lines.
type LineCollector struct {
	mu       sync.Mutex
	capacity int
	lines    []string
	carry    string
}

// NewLineCollector returns a LineCollector with the given capacity,
// clamped to MinLineBufferCapacity.
func NewLineCollector(capacity int) *LineCollector {
	if capacity < MinLineBufferCapacity {
		capacity = MinLineBufferCapacity
	}
	return &LineCollector{capacity: capacity}
}

// Write feeds a raw chunk of process output into the collector.
func (c *LineCollector) Write(chunk []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := c.carry + string(chunk)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	c.carry = parts[len(parts)-1]
	for _, line := range parts[:len(parts)-1] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		c.append(trimmed)
	}
	return len(chunk), nil
}

func (c *LineCollector) append(line string) {
	c.lines = append(c.lines, line)
	if len(c.lines) > c.capacity {
		c.lines = c.lines[len(c.lines)-c.capacity:]
	}
}

// Lines returns every retained line, oldest first.
func (c *LineCollector) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Tail returns the last n retained lines (fewer if not that many exist).
func (c *LineCollector) Tail(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n >= len(c.lines) {
		out := make([]string, len(c.lines))
		copy(out, c.lines)
		return out
	}
	out := make([]string, n)
	copy(out, c.lines[len(c.lines)-n:])
	return out
}

// MatchFirst returns the first retained line matching re, and whether one was found.
func (c *LineCollector) MatchFirst(re *regexp.Regexp) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		if re.MatchString(line) {
			return line, true
		}
	}
	return "", false
}

// DiagnosticEventType enumerates launch diagnostic event kinds.
type DiagnosticEventType string

const (
	DiagnosticEventLaunch DiagnosticEventType = "launch"
	DiagnosticEventProcess DiagnosticEventType = "process"
	DiagnosticEventSignal DiagnosticEventType = "signal"
	DiagnosticEventWindow DiagnosticEventType = "window"
	DiagnosticEventTarget DiagnosticEventType = "target"
	DiagnosticEventAttach DiagnosticEventType = "attach"
)

// DiagnosticEvent is one entry in the launch diagnostics event log.
type DiagnosticEvent struct {
	Type      DiagnosticEventType
	Timestamp time.Time
	Detail    map[string]any
}

// EventLog is a bounded ring buffer of DiagnosticEvents.
type EventLog struct {
	mu       sync.Mutex
	capacity int
	entries  []DiagnosticEvent
}

// NewEventLog returns an EventLog with the given capacity.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = DefaultEventLogCapacity
	}
	return &EventLog{capacity: capacity}
}

// Record appends an event, stamping Timestamp if zero.
func (l *EventLog) Record(e DiagnosticEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Entries returns every retained event, oldest first.
func (l *EventLog) Entries() []DiagnosticEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]DiagnosticEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

// ReadinessRecord is one append-only entry in the readiness timeline.
type ReadinessRecord struct {
	SignalName string
	Attempt    int
	StartedAt  time.Time
	FinishedAt time.Time
	DurationMs int64
	Ready      bool
	TimedOut   bool
	Detail     string
}

// ReadinessTimeline is an append-only record of readiness wait attempts.
type ReadinessTimeline struct {
	mu      sync.Mutex
	records []ReadinessRecord
}

// Append adds a ReadinessRecord to the timeline.
func (t *ReadinessTimeline) Append(r ReadinessRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, r)
}

// Records returns the full readiness timeline, oldest first.
func (t *ReadinessTimeline) Records() []ReadinessRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ReadinessRecord, len(t.records))
	copy(out, t.records)
	return out
}

// sensitiveEnvPattern matches environment variable names considered
// sensitive, mirroring the event log's redaction pattern (SPEC_FULL.md §4.6).
var sensitiveEnvPattern = regexp.MustCompile(`(?i)(token|secret|password|passwd|key|auth|cookie|session|credential)`)

// SanitizedEnv is the result of sanitizing a process environment for
// inclusion in diagnostics.
type SanitizedEnv struct {
	Included     map[string]string
	RedactedKeys []string
}

// SanitizeEnv includes only keys matching allowedPrefixes or explicitly
// listed in allowlist, lexicographically sorted. Any included key whose
// name matches the sensitive pattern is replaced with [REDACTED] and
// recorded in RedactedKeys.
func SanitizeEnv(env map[string]string, allowedPrefixes []string, allowlist []string) SanitizedEnv {
	allowSet := make(map[string]bool, len(allowlist))
	for _, k := range allowlist {
		allowSet[k] = true
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		if allowSet[k] || hasAnyPrefix(k, allowedPrefixes) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := SanitizedEnv{Included: make(map[string]string, len(keys))}
	for _, k := range keys {
		if sensitiveEnvPattern.MatchString(k) {
			result.Included[k] = "[REDACTED]"
			result.RedactedKeys = append(result.RedactedKeys, k)
		} else {
			result.Included[k] = env[k]
		}
	}
	return result
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Diagnostics bundles per-session launch diagnostics: line collectors
// for stdout/stderr, the diagnostic event log, and the readiness
// timeline.
type Diagnostics struct {
	Stdout    *LineCollector
	Stderr    *LineCollector
	Events    *EventLog
	Readiness *ReadinessTimeline
}

// NewDiagnostics constructs a Diagnostics with default buffer sizes.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		Stdout:    NewLineCollector(DefaultLineBufferCapacity),
		Stderr:    NewLineCollector(DefaultLineBufferCapacity),
		Events:    NewEventLog(DefaultEventLogCapacity),
		Readiness: &ReadinessTimeline{},
	}
}
