package planning

import "fmt"

// Outcome is the common part of every engine report: engines never return
// errors to the approval workflow, they describe what happened instead.
type Outcome struct {
	Aborted     bool
	AbortReason string
	Failed      bool
	Error       string
	Warnings    []string
}

// Abort marks the run as stopped on an expected condition
func (o *Outcome) Abort(reason string) {
	o.Aborted = true
	o.AbortReason = reason
}

// Fail marks the run as ended by an unexpected error
func (o *Outcome) Fail(err error) {
	o.Failed = true
	o.Error = err.Error()
}

// Warn appends a formatted warning
func (o *Outcome) Warn(format string, args ...interface{}) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// Succeeded reports whether the run completed its write (possibly with warnings)
func (o *Outcome) Succeeded() bool {
	return !o.Aborted && !o.Failed
}

// Label returns "succeeded", "aborted" or "failed" for logs and metrics
func (o *Outcome) Label() string {
	switch {
	case o.Failed:
		return "failed"
	case o.Aborted:
		return "aborted"
	default:
		return "succeeded"
	}
}
