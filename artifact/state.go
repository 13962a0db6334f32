package artifact

import "fmt"

// State is a step of a single acquisition.
//
//	NotPresent -> Downloading -> Verifying -> Ready
//	                                      \-> Failed
//
// An acquisition that finds a file on disk starts at Verifying; a
// cache hit then goes straight to Ready and a corrupt file drops back
// to NotPresent. NotPresent is only reported while the canonical path
// holds no file. Failed always means no usable artifact was left there.
type State int

const (
	NotPresent State = iota
	Downloading
	Verifying
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case NotPresent:
		return "not-present"
	case Downloading:
		return "downloading"
	case Verifying:
		return "verifying"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == Ready || s == Failed
}

// StateObserver is notified of every state an acquisition enters.
type StateObserver func(path string, s State)
