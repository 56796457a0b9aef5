package events

import (
	"time"

	"github.com/spec-kit/browser-calls/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSubmitted  EventType = "ticket_submitted"
	EventCapabilityIssued EventType = "capability_issued"
	EventCallRouted       EventType = "call_routed"
	EventAgentLoggedIn    EventType = "agent_logged_in"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketSubmittedPayload payload.
type TicketSubmittedPayload struct {
	TicketID    string `json:"ticket_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// CapabilityIssuedPayload payload.
type CapabilityIssuedPayload struct {
	IncomingIdentity string `json:"incoming_identity"`
	RequestedPage    string `json:"requested_page"`
	Authenticated    bool   `json:"authenticated"`
}

// CallRoutedPayload payload.
type CallRoutedPayload struct {
	CallSID   string               `json:"call_sid,omitempty"`
	From      string               `json:"from,omitempty"`
	To        string               `json:"to,omitempty"`
	Direction domain.CallDirection `json:"direction"`
	Target    string               `json:"target"`
}

// AgentLoggedInPayload payload.
type AgentLoggedInPayload struct {
	AgentID string `json:"agent_id"`
}
