package models

// Task statuses as used in the task files. These are conventional values,
// not an enforced enumeration: the status column is free text.
const (
	TaskStatusNotStarted = "da iniziare"
	TaskStatusInProgress = "in corso"
	TaskStatusCompleted  = "completato"
	TaskStatusClosed     = "conclusa"
)

// Task represents one project/todo row.
type Task struct {
	ID          int    `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descrizione"`
	Status      string `json:"stato"`
	StartDate   string `json:"data_inizio"`
	EndDate     string `json:"data_fine"`
}
