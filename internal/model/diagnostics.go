package model

import (
	"fmt"
	"strings"
)

// ValidationError carries a classified kind and a human-readable message.
// Its severity is the kind's baked-in default unless overridden explicitly
// by the producer (alias hazards do this, since Scope/Incompatibility
// hazards downgrade to Warning while the same kind can also appear as an
// Error elsewhere).
type ValidationError struct {
	Kind     ErrorKind
	Message  string
	Severity Severity
}

// NewValidationError builds a ValidationError using the kind's default
// severity.
func NewValidationError(kind ErrorKind, format string, args ...any) ValidationError {
	return ValidationError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Severity: kind.DefaultSeverity(),
	}
}

// Error implements the error interface so ValidationError composes with
// fmt.Errorf("%w", ...) chains elsewhere in the module.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Severity, e.Kind, e.Message)
}

// ValidationResult accumulates the errors and warnings produced during a
// build. AddError with severity Error flips Valid to false; warnings never
// invalidate.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Valid    bool
}

// NewValidationResult returns a result that starts out valid.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// AddError appends a record. Only Error-severity records flip Valid.
func (r *ValidationResult) AddError(e ValidationError) {
	if e.Severity == SeverityError {
		r.Errors = append(r.Errors, e)
		r.Valid = false
		return
	}
	r.Warnings = append(r.Warnings, e)
}

// AddWarning appends e as a warning regardless of its baked-in severity.
func (r *ValidationResult) AddWarning(e ValidationError) {
	e.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, e)
}

// Summary returns a terse PASSED/FAILED line with error/warning counts.
func (r *ValidationResult) Summary() string {
	if r.Valid {
		return fmt.Sprintf("PASSED (%d warnings)", len(r.Warnings))
	}
	return fmt.Sprintf("FAILED (%d errors, %d warnings)", len(r.Errors), len(r.Warnings))
}

// GenerateReport produces a multi-line textual report. frameIndex < 0
// omits the frame index prefix.
func (r *ValidationResult) GenerateReport(frameIndex int64) string {
	var b strings.Builder
	if frameIndex >= 0 {
		fmt.Fprintf(&b, "frame %d: %s\n", frameIndex, r.Summary())
	} else {
		fmt.Fprintf(&b, "%s\n", r.Summary())
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e.Error())
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w.Error())
	}
	return b.String()
}

// DiagnosticsSink is implemented by the core and passed to optimization
// strategies so they can report problems without holding a reference to
// the whole build context.
type DiagnosticsSink interface {
	AddError(ValidationError)
	AddWarning(ValidationError)
}

// resultSink adapts a *ValidationResult to the DiagnosticsSink interface.
type resultSink struct {
	result *ValidationResult
}

func (s resultSink) AddError(e ValidationError)   { s.result.AddError(e) }
func (s resultSink) AddWarning(e ValidationError) { s.result.AddWarning(e) }

var _ DiagnosticsSink = resultSink{}

// NewResultSink adapts r to DiagnosticsSink so build phases and
// optimization strategies can report into it without holding a
// *ValidationResult directly.
func NewResultSink(r *ValidationResult) DiagnosticsSink {
	return resultSink{result: r}
}
