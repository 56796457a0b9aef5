package domain

// Client identities a browser client may register to receive calls as.
const (
	IdentitySupportAgent = "support_agent"
	IdentityCustomer     = "customer"
)

// CallDirection tells which way a routed leg goes.
type CallDirection string

const (
	DirectionOutbound CallDirection = "outbound"
	DirectionInbound  CallDirection = "inbound"
)

// CallLeg is one of the two call shapes the router can dial: OutboundLeg or InboundLeg.
type CallLeg interface {
	Direction() CallDirection
	isCallLeg()
}

// OutboundLeg is an agent's browser client dialing a PSTN number.
type OutboundLeg struct {
	Number string
}

func (OutboundLeg) Direction() CallDirection { return DirectionOutbound }
func (OutboundLeg) isCallLeg()               {}

// InboundLeg is a customer's browser client reaching a named client identity.
type InboundLeg struct {
	ClientIdentity string
}

func (InboundLeg) Direction() CallDirection { return DirectionInbound }
func (InboundLeg) isCallLeg()               {}

// CallbackPayload is the subset of a voice webhook the router reads.
type CallbackPayload struct {
	CallSID string
	From    string
	To      string
	// PhoneNumber is nil when the callback carried no phoneNumber field.
	PhoneNumber *string
}
