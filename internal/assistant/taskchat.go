package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/storage/models"
	"github.com/calendar-mentor/backend/internal/websocket"
)

// taskChatPrompt instructs the service on the task-management actions
// and the JSON reply shape.
const taskChatPrompt = `Sei un assistente che aiuta a gestire le task. Puoi eseguire le seguenti azioni:
- AGGIUNGI: Aggiunge una nuova task
- MODIFICA: Modifica una task esistente
- ELIMINA: Elimina una task
- LISTA: Mostra la lista delle task
- STATO: Cambia lo stato di una task

Analizza il messaggio dell'utente e restituisci un JSON con:
{
    "action": "AGGIUNGI|MODIFICA|ELIMINA|LISTA|STATO",
    "data": {
        "nome": "nome task",
        "descrizione": "descrizione task",
        "stato": "da iniziare|in corso|completato|conclusa",
        "data_inizio": "YYYY-MM-DD",
        "data_fine": "YYYY-MM-DD"
    }
}`

// Task chat actions.
const (
	taskActionAdd    = "AGGIUNGI"
	taskActionModify = "MODIFICA"
	taskActionDelete = "ELIMINA"
	taskActionList   = "LISTA"
	taskActionStatus = "STATO"
)

// taskChatReply is the JSON shape of the service reply for task chat.
type taskChatReply struct {
	Action string `json:"action"`
	Data   struct {
		Name        string `json:"nome"`
		Description string `json:"descrizione"`
		Status      string `json:"stato"`
		StartDate   string `json:"data_inizio"`
		EndDate     string `json:"data_fine"`
	} `json:"data"`
}

// TaskManager drives the Task Store through chat messages. Each message
// maps to one of the five actions; everything else answers with the
// fixed "action not recognized" text and touches nothing.
type TaskManager struct {
	chat        ChatService
	tasks       storage.TaskStore
	broadcaster *websocket.EventBroadcaster
}

// NewTaskManager creates a TaskManager.
func NewTaskManager(chat ChatService, tasks storage.TaskStore, broadcaster *websocket.EventBroadcaster) *TaskManager {
	return &TaskManager{chat: chat, tasks: tasks, broadcaster: broadcaster}
}

// HandleMessage interprets one chat message and performs the requested
// task operation. Every failure converts to the fixed error text; the
// underlying cause is logged, not surfaced.
func (m *TaskManager) HandleMessage(ctx context.Context, message string) string {
	reply, err := m.chat.ChatJSON(ctx, taskChatPrompt, message)
	if err != nil {
		log.Printf("Task chat service error: %v", err)
		return TaskChatErrorResponse
	}

	var parsed taskChatReply
	if err := json.Unmarshal([]byte(stripFences(reply)), &parsed); err != nil {
		log.Printf("Task chat decode error: %v", err)
		return TaskChatErrorResponse
	}

	response, err := m.apply(ctx, parsed)
	if err != nil {
		log.Printf("Task chat action %s failed: %v", parsed.Action, err)
		return TaskChatErrorResponse
	}
	return response
}

func (m *TaskManager) apply(ctx context.Context, reply taskChatReply) (string, error) {
	switch reply.Action {
	case taskActionAdd:
		tasks, err := m.tasks.Load(ctx)
		if err != nil {
			return "", err
		}
		task := models.Task{
			ID:          nextTaskID(tasks),
			Name:        reply.Data.Name,
			Description: reply.Data.Description,
			Status:      reply.Data.Status,
			StartDate:   reply.Data.StartDate,
			EndDate:     reply.Data.EndDate,
		}
		if task.Status == "" {
			task.Status = models.TaskStatusNotStarted
		}
		if err := m.tasks.Replace(ctx, append(tasks, task)); err != nil {
			return "", err
		}
		m.notify("created", task.Name, task.Status)
		return "Task aggiunta con successo!", nil

	case taskActionModify:
		tasks, err := m.tasks.Load(ctx)
		if err != nil {
			return "", err
		}
		for i, t := range tasks {
			if t.Name == reply.Data.Name {
				tasks[i].Description = reply.Data.Description
				tasks[i].Status = reply.Data.Status
				tasks[i].StartDate = reply.Data.StartDate
				tasks[i].EndDate = reply.Data.EndDate
			}
		}
		if err := m.tasks.Replace(ctx, tasks); err != nil {
			return "", err
		}
		m.notify("updated", reply.Data.Name, reply.Data.Status)
		return "Task modificata con successo!", nil

	case taskActionDelete:
		tasks, err := m.tasks.Load(ctx)
		if err != nil {
			return "", err
		}
		kept := tasks[:0]
		for _, t := range tasks {
			if t.Name != reply.Data.Name {
				kept = append(kept, t)
			}
		}
		if err := m.tasks.Replace(ctx, kept); err != nil {
			return "", err
		}
		m.notify("deleted", reply.Data.Name, "")
		return "Task eliminata con successo!", nil

	case taskActionList:
		tasks, err := m.tasks.Load(ctx)
		if err != nil {
			return "", err
		}
		return renderTaskList(tasks), nil

	case taskActionStatus:
		tasks, err := m.tasks.Load(ctx)
		if err != nil {
			return "", err
		}
		for i, t := range tasks {
			if t.Name == reply.Data.Name {
				tasks[i].Status = reply.Data.Status
			}
		}
		if err := m.tasks.Replace(ctx, tasks); err != nil {
			return "", err
		}
		m.notify("updated", reply.Data.Name, reply.Data.Status)
		return fmt.Sprintf("Stato della task '%s' aggiornato a '%s'", reply.Data.Name, reply.Data.Status), nil
	}

	return UnrecognizedResponse, nil
}

func (m *TaskManager) notify(action, name, status string) {
	if m.broadcaster != nil {
		m.broadcaster.BroadcastTaskChanged(action, name, status)
	}
}

// nextTaskID assigns the next identifier past the highest in use.
func nextTaskID(tasks []models.Task) int {
	max := 0
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// renderTaskList formats the task table as plain text for the chat.
func renderTaskList(tasks []models.Task) string {
	if len(tasks) == 0 {
		return "Nessuna task attiva al momento."
	}
	var b strings.Builder
	b.WriteString("Le tue task:\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "%d. %s [%s]", t.ID, t.Name, t.Status)
		if t.EndDate != "" {
			fmt.Fprintf(&b, " entro %s", t.EndDate)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
