package domain

import "time"

// Agent is a support operator allowed to view the dashboard and answer browser calls.
type Agent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}
