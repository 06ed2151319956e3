package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies the failure class carried on a Fault. Collaborators return
// these as typed values so the orchestrator never has to re-parse rendered
// error text to decide whether a run can survive.
type Code string

const (
	CodeConfig  Code = "CONFIG_ERROR"  // no usable completion backend; fatal
	CodeSearch  Code = "SEARCH_ERROR"  // knowledge/web retrieval failed; recoverable
	CodeTimeout Code = "TIMEOUT"       // collaborator deadline exceeded; recoverable
	CodeUnknown Code = "UNKNOWN"       // anything unclassified; fatal
)

// Fault wraps an error with its classification. Recoverability is a property
// of the type, not of the message.
type Fault struct {
	Code        Code
	Recoverable bool
	Err         error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return string(f.Code)
	}
	return fmt.Sprintf("%s: %v", f.Code, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Fatal wraps err as a non-recoverable fault.
func Fatal(code Code, err error) *Fault {
	return &Fault{Code: code, Recoverable: false, Err: err}
}

// Recoverable wraps err as a fault the run can survive.
func Recoverable(code Code, err error) *Fault {
	return &Fault{Code: code, Recoverable: true, Err: err}
}

// Classify extracts the code and recoverability from err. Typed faults win;
// untyped errors fall back to the reference system's keyword heuristic so
// errors raised by third-party clients still classify sensibly.
func Classify(err error) (Code, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code, f.Recoverable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return CodeTimeout, true
	case strings.Contains(msg, "search") || strings.Contains(msg, "duckduckgo"):
		return CodeSearch, true
	}
	return CodeUnknown, false
}
