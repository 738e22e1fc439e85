package models

import "time"

// Prediction is the rendered outcome of one inference.
type Prediction struct {
	ID          string    `json:"id"`
	Label       int       `json:"label"`
	Probability float64   `json:"probability"`
	Percent     string    `json:"percent"`
	Verdict     string    `json:"verdict"`
	Style       string    `json:"style"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Canceled reports whether the pipeline predicted a cancellation.
func (p *Prediction) Canceled() bool {
	return p.Label == LabelCanceled
}

// FormState keeps the last values a browser session entered in the form.
type FormState struct {
	SessionID string       `json:"session_id"`
	Input     BookingInput `json:"input"`
	UpdatedAt time.Time    `json:"updated_at"`
}
