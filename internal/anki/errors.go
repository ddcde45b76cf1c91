package anki

import (
	"fmt"
	"strings"
)

// remoteErrMarker prefixes every surfaced collaborator-level error message.
// Invariant: a surfaced message carries the marker exactly once, however many
// layers the error passes through on its way out.
const remoteErrMarker = "anki-connect error"

// TransportError means AnkiConnect could not be reached or returned an
// unusable response. It is a connectivity problem, not a business-level
// failure from Anki itself.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("anki-connect unreachable (action %s): %v; is Anki running with the AnkiConnect add-on?", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError carries a non-null error string returned by AnkiConnect,
// composed once with an actionable hint when the message matches a known
// failure phrase.
type RemoteError struct {
	Action  string
	Message string // composed message, marker included
}

func (e *RemoteError) Error() string { return e.Message }

// newRemoteError composes the surfaced message for a collaborator error. A
// message that already carries the marker is passed through untouched so the
// marker never appears twice.
func newRemoteError(action, msg string) *RemoteError {
	if strings.Contains(msg, remoteErrMarker) {
		return &RemoteError{Action: action, Message: msg}
	}
	composed := fmt.Sprintf("%s (action %s): %s", remoteErrMarker, action, msg)
	if hint := hintFor(msg); hint != "" {
		composed += ". " + hint
	}
	return &RemoteError{Action: action, Message: composed}
}

// hintFor maps known AnkiConnect error phrases to a next step the caller can
// actually take.
func hintFor(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "duplicate"):
		return "A note with the same first field already exists; set options.allowDuplicate or change the note"
	case strings.Contains(lower, "deck") && strings.Contains(lower, "not found"):
		return "Use deckNames to list the exact deck names"
	case strings.Contains(lower, "model") && strings.Contains(lower, "not found"):
		return "Use modelNames to list the exact model names"
	case strings.Contains(lower, "field"):
		return "Field names must match the note's model exactly; use modelFieldNames to check them"
	}
	return ""
}
