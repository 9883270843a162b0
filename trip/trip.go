// Package trip records failures met while driving or exporting a carousel.
//
// A script that drives a carousel does not abort on the first problem. Each
// problem is recorded as a Trip with a severity, and the caller decides at
// the end whether the run is usable.
//
// Trip types used across the module:
//   - "startup": the program never produced a first frame
//   - "timing": a wait for an index or condition expired
//   - "assertion": index, direction or view did not match
//   - "visual": frame capture or baseline comparison failed
package trip

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Context carries debugging values attached to a trip.
type Context map[string]interface{}

// Severity says how much a trip affects the run.
type Severity int

const (
	// Stumble is cosmetic: a frame failed to save, a baseline drifted.
	Stumble Severity = iota
	// Error invalidates the assertion it came from.
	Error
	// Fall invalidates the whole run.
	Fall
)

func (s Severity) String() string {
	switch s {
	case Stumble:
		return "stumble"
	case Error:
		return "error"
	case Fall:
		return "fall"
	default:
		return "unknown"
	}
}

// Trip is one recorded failure.
type Trip struct {
	Type      string
	Message   string
	Context   Context
	Timestamp time.Time
	Severity  Severity
}

// New returns an Error-severity trip.
func New(kind, message string, ctx Context) *Trip {
	return &Trip{Type: kind, Message: message, Context: ctx, Timestamp: time.Now(), Severity: Error}
}

// NewStumble returns a Stumble-severity trip.
func NewStumble(kind, message string, ctx Context) *Trip {
	t := New(kind, message, ctx)
	t.Severity = Stumble
	return t
}

// NewFall returns a Fall-severity trip.
func NewFall(kind, message string, ctx Context) *Trip {
	t := New(kind, message, ctx)
	t.Severity = Fall
	return t
}

func (t *Trip) Error() string {
	return fmt.Sprintf("[%s:%s] %s", t.Type, t.Severity, t.Message)
}

// Recoverable reports whether the run stays valid despite this trip.
func (t *Trip) Recoverable() bool { return t.Severity == Stumble }

// Detailed renders the trip with its context, keys sorted.
func (t *Trip) Detailed() string {
	var b strings.Builder
	b.WriteString(t.Error())
	b.WriteString("\n  time: " + t.Timestamp.Format("15:04:05.000"))

	keys := make([]string, 0, len(t.Context))
	for k := range t.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %v", k, t.Context[k])
	}
	return b.String()
}

// Log collects trips in the order they happened.
type Log struct {
	component string
	trips     []*Trip
}

// NewLog returns an empty log for a component name.
func NewLog(component string) *Log {
	return &Log{component: component}
}

// Record appends a trip.
func (l *Log) Record(t *Trip) {
	l.trips = append(l.trips, t)
}

// Trips returns everything recorded.
func (l *Log) Trips() []*Trip { return l.trips }

// Failed reports whether any non-stumble trip was recorded.
func (l *Log) Failed() bool {
	for _, t := range l.trips {
		if !t.Recoverable() {
			return true
		}
	}
	return false
}

// Fallen reports whether a Fall was recorded.
func (l *Log) Fallen() bool {
	for _, t := range l.trips {
		if t.Severity == Fall {
			return true
		}
	}
	return false
}

// Last returns the most recent non-stumble trip, or nil.
func (l *Log) Last() *Trip {
	for i := len(l.trips) - 1; i >= 0; i-- {
		if !l.trips[i].Recoverable() {
			return l.trips[i]
		}
	}
	return nil
}

// Summary is a one-line count.
func (l *Log) Summary() string {
	var errs, stumbles int
	for _, t := range l.trips {
		if t.Recoverable() {
			stumbles++
		} else {
			errs++
		}
	}
	if errs == 0 && stumbles == 0 {
		return fmt.Sprintf("[%s] clean run", l.component)
	}
	return fmt.Sprintf("[%s] %d trips, %d stumbles", l.component, errs, stumbles)
}

// Report lists every trip in detail.
func (l *Log) Report() string {
	var b strings.Builder
	b.WriteString(l.Summary())
	for i, t := range l.trips {
		fmt.Fprintf(&b, "\n%d. %s", i+1, t.Detailed())
	}
	return b.String()
}
