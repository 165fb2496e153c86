// Package assistant implements the natural-language command pipeline:
// free text in, one of a fixed set of store actions out, with an Italian
// response for the user.
package assistant

import (
	"errors"
	"fmt"
)

// Fixed user-facing responses. Every failure inside the pipeline is
// terminal for that invocation and converts to one of these; nothing
// propagates as a crash and nothing is retried.
const (
	ApologyResponse         = "Mi dispiace, si è verificato un errore durante l'elaborazione del comando."
	UnrecognizedResponse    = "Azione non riconosciuta"
	ChatUnavailableResponse = "Mi dispiace, il servizio OpenAI non è configurato correttamente. Controlla le variabili d'ambiente."
	ChatErrorResponse       = "Mi dispiace, c'è stato un errore nella comunicazione con ChatGPT."
	TaskChatErrorResponse   = "Mi dispiace, c'è stato un errore nella gestione delle task."
	VoiceUnavailableMessage = "La registrazione vocale non è disponibile in questo ambiente."
)

// ErrUnrecognizedAction marks an action kind outside the recognized set.
// Descriptor parsing fails closed on it: no mutation is ever attempted.
var ErrUnrecognizedAction = errors.New("assistant: action not recognized")

// InterpretationError wraps a failure of the language-understanding
// service: network error, non-200 status, or malformed JSON in the
// reply. Callers catch it and answer with the generic apology.
type InterpretationError struct {
	Stage string // "request", "status", "decode"
	Err   error
}

func (e *InterpretationError) Error() string {
	return fmt.Sprintf("assistant: interpreting command (%s): %v", e.Stage, e.Err)
}

func (e *InterpretationError) Unwrap() error { return e.Err }
