package models

// PantryItem represents one product row in the pantry file.
type PantryItem struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	ExpirationDate string  `json:"expiration_date"`
	MinQuantity    float64 `json:"min_quantity"`
}

// Recipe represents one saved recipe row.
type Recipe struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
}

// WellnessEntry represents one daily wellness log row.
type WellnessEntry struct {
	Date              string  `json:"data"`
	Mood              int     `json:"umore"`
	Energy            int     `json:"energia"`
	Stress            int     `json:"stress"`
	SleepHours        float64 `json:"sonno_ore"`
	ExerciseMinutes   int     `json:"attivita_fisica_minuti"`
	MeditationMinutes int     `json:"meditazione_minuti"`
	Notes             string  `json:"note"`
}
