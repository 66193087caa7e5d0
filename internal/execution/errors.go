package execution

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies why an installer step failed to complete
type Kind int

const (
	KindLaunch Kind = iota
	KindExit
	KindTimeout
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindLaunch:
		return "launch"
	case KindExit:
		return "exit"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// StepError reports an installer script that could not be run to a successful exit
type StepError struct {
	Kind     Kind
	Script   string
	ExitCode int           // set for KindExit
	Timeout  time.Duration // set for KindTimeout
	Output   string        // tail of the combined output
	Err      error
}

func (e *StepError) Error() string {
	var msg string
	switch e.Kind {
	case KindLaunch:
		msg = fmt.Sprintf("cannot launch %s: %v", e.Script, e.Err)
	case KindExit:
		msg = fmt.Sprintf("%s exited with code %d", e.Script, e.ExitCode)
	case KindTimeout:
		msg = fmt.Sprintf("%s timed out after %v", e.Script, e.Timeout)
	default:
		msg = fmt.Sprintf("%s canceled: %v", e.Script, e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" && e.Kind != KindLaunch {
		msg += "\noutput:\n" + out
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}
