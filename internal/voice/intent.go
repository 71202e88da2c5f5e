// Package voice maps speech-to-text transcripts to whiteboard commands.
//
// Classification is a pure function: it never touches the surface. Callers
// act on the returned Intent and must surface Unrecognized to the user.
package voice

import "errors"

// ErrUnrecognizedCommand is returned by callers when a transcript matches no
// command.
var ErrUnrecognizedCommand = errors.New("command not recognized")

// UnrecognizedMessage is the notice shown for an unrecognized transcript.
const UnrecognizedMessage = "Command not recognized."

// Intent is the classified meaning of a transcript.
type Intent int

const (
	Unrecognized Intent = iota
	Clear
	Solve
	Draw
)

// priority is the order intents are tested in; the first match wins.
var priority = []Intent{Clear, Solve, Draw}

func (i Intent) String() string {
	switch i {
	case Clear:
		return "clear"
	case Solve:
		return "solve"
	case Draw:
		return "draw"
	default:
		return "unrecognized"
	}
}
