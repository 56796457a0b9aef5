package domain

import "time"

// SupportTicket is a customer-submitted support request. Tickets are immutable once stored.
type SupportTicket struct {
	ID          string
	Name        string
	PhoneNumber string
	Description string
	Timestamp   time.Time
}
