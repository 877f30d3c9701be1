// Package notice carries the fire-and-forget messages shown to the user.
// Notices never become part of the session state.
package notice

import "fmt"

type Kind int

const (
	MissingInput Kind = iota + 1
	InvalidFormat
	ConnectionFailed
	Busy
)

func (k Kind) String() string {
	switch k {
	case MissingInput:
		return "missing_input"
	case InvalidFormat:
		return "invalid_format"
	case ConnectionFailed:
		return "connection_failed"
	case Busy:
		return "busy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	MessageMissingInput     = "Please upload a resume and enter a job description."
	MessageInvalidFormat    = "Invalid file format: please select a .pdf or .docx file."
	MessageConnectionFailed = "Connection failed: check that the analysis service is reachable."
	MessageBusy             = "An analysis is already in progress."
)

type Notice struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, err error) Notice {
	return Notice{Kind: kind, Message: message(kind), Err: err}
}

func message(kind Kind) string {
	switch kind {
	case MissingInput:
		return MessageMissingInput
	case InvalidFormat:
		return MessageInvalidFormat
	case ConnectionFailed:
		return MessageConnectionFailed
	case Busy:
		return MessageBusy
	default:
		return ""
	}
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})
