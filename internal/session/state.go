package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-analyzer/internal/gateway"
	"github.com/spigell/resume-analyzer/internal/intake"
)

type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the submission lifecycle. Result is the last successful report and
// survives later InFlight and Failed phases until a new success replaces it.
type State struct {
	Phase  Phase
	Result *gateway.Result
	Err    error
}

// Snapshot is a copy of everything the controller owns.
type Snapshot struct {
	Selected    *intake.File
	DragActive  bool
	Description string
	State       State
	// Revision grows by one on every observable change.
	Revision uint64
}

var (
	ErrPreconditionNotMet = errors.New("precondition not met")
	ErrStopped            = errors.New("session stopped")
	errAlreadyRunning     = errors.New("session is already running")
)

// PreconditionError explains why a submission was refused.
type PreconditionError struct {
	MissingResume      bool
	MissingDescription bool
	Busy               bool
}

func (e *PreconditionError) Error() string {
	if e.Busy {
		return "analysis already in flight"
	}

	var missing []string
	if e.MissingResume {
		missing = append(missing, "resume")
	}
	if e.MissingDescription {
		missing = append(missing, "job description")
	}

	return fmt.Sprintf("missing %s", strings.Join(missing, " and "))
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionNotMet
}
