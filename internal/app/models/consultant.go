package models

import "time"

// Consultant defines the consultant identity based on the 'consultants' table.
// Only its login id matters here; it shares the namespace with Member.
type Consultant struct {
	ID           int64     `json:"id" db:"id"`
	ConsultantID string    `json:"consultantId" db:"consultant_id"`
	Name         string    `json:"name" db:"consultant_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
