package assistant

import (
	"context"
	"strings"
	"time"
)

// systemPrompt is the fixed instruction describing the calendar domain
// and the JSON reply contract.
const systemPrompt = `Sei un assistente del calendario che aiuta a gestire eventi e attività.
Analizza il comando dell'utente e restituisci una risposta JSON strutturata con le azioni da eseguire.
Se l'utente menziona "domani", usa la data di domani. Se menziona "oggi", usa la data odierna.

Le azioni possibili sono:
- add_event: aggiungere un evento al calendario
- add_task: aggiungere una task
- delete_task: eliminare una task
- search_recipe: cercare una ricetta
- manage_task: gestire le task esistenti
- check_pantry: consultare la dispensa

Esempio di comando: "aggiungi task per domani di comprare il latte"
Esempio di risposta:
{
    "action": "add_task",
    "data": {
        "title": "Comprare il latte",
        "description": "Lista della spesa: latte",
        "date": "2025-03-16",
        "time": "09:00",
        "event_type": "task"
    },
    "response": "Ho aggiunto il task 'Comprare il latte' per domani alle 09:00."
}`

// Trigger words for relative dates, checked in this order. "domani"
// wins over "oggi" when both appear.
const (
	triggerTomorrow = "domani"
	triggerToday    = "oggi"
)

const dateLayout = "2006-01-02"

// Interpreter turns a free-text utterance into an action Descriptor by
// delegating to the language-understanding service.
type Interpreter struct {
	chat ChatService
	now  func() time.Time
}

// NewInterpreter creates an Interpreter over the given chat service.
func NewInterpreter(chat ChatService) *Interpreter {
	return &Interpreter{chat: chat, now: time.Now}
}

// WithClock overrides the wall clock. Tests use it to pin the date.
func (i *Interpreter) WithClock(now func() time.Time) *Interpreter {
	i.now = now
	return i
}

// Interpret sends the utterance to the language service and parses the
// reply into a Descriptor. Relative date words in the utterance are
// resolved locally against the wall clock and override whatever date
// the service inferred. Any service or parse failure returns an
// *InterpretationError; the Interpreter never touches the stores.
func (i *Interpreter) Interpret(ctx context.Context, text string) (Descriptor, error) {
	reply, err := i.chat.ChatJSON(ctx, systemPrompt, text)
	if err != nil {
		return Descriptor{}, &InterpretationError{Stage: "request", Err: err}
	}

	descriptor, err := ParseDescriptor(stripFences(reply))
	if err != nil {
		return Descriptor{}, &InterpretationError{Stage: "decode", Err: err}
	}

	if descriptor.Event != nil {
		if date, ok := i.resolveRelativeDate(text); ok {
			descriptor.Event.Date = date
		}
	}

	return descriptor, nil
}

// resolveRelativeDate maps "domani"/"oggi" in the utterance to a
// concrete date. The service's own date field loses whenever either
// trigger word is present; "domani" is checked first.
func (i *Interpreter) resolveRelativeDate(text string) (string, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, triggerTomorrow):
		return i.now().AddDate(0, 0, 1).Format(dateLayout), true
	case strings.Contains(lower, triggerToday):
		return i.now().Format(dateLayout), true
	}
	return "", false
}
