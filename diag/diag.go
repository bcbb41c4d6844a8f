/*
Package diag holds the diagnostics package check produces while
determinizing a graph: dispatch conflicts found during subset
construction, and destination symbols a Call can push but no Return ever
reaches. Nothing in this package runs during emission or interpretation —
spec.md section 4.5/7 scope both kinds of diagnostic to compile time only.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package diag

import "fmt"

// Severity distinguishes a hard error (the compiled graph cannot be
// trusted to behave as written) from an informational note.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one conflict or unreachable-return report, with a
// breadcrumb trail back to the combinator call site(s) responsible, when
// that provenance is available.
type Diagnostic struct {
	Severity Severity
	Message  string
	Tags     []string // breadcrumb State.Tag values implicated
}

func (d Diagnostic) String() string {
	if len(d.Tags) == 0 {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", d.Severity, d.Message, d.Tags)
}

// Bag collects diagnostics produced by one Compile call.
type Bag struct {
	items []Diagnostic
}

// NewBag creates an empty Bag.
func NewBag() *Bag { return &Bag{} }

// Add records a diagnostic.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Errorf records an Error-severity diagnostic.
func (b *Bag) Errorf(tags []string, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Tags: tags})
}

// Warnf records a Warning-severity diagnostic.
func (b *Bag) Warnf(tags []string, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Tags: tags})
}

// Items returns every diagnostic recorded so far.
func (b *Bag) Items() []Diagnostic { return append([]Diagnostic(nil), b.items...) }

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Empty reports whether no diagnostics were recorded at all.
func (b *Bag) Empty() bool { return len(b.items) == 0 }
