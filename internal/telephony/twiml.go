package telephony

import (
	"errors"
	"fmt"

	"github.com/twilio/twilio-go/twiml"

	"github.com/spec-kit/browser-calls/internal/domain"
)

// TwiMLContentType is the media type of rendered dial instructions.
const TwiMLContentType = "application/xml"

// DialInstructions renders a TwiML <Response> with one <Dial> presenting callerID and
// exactly one nested target for leg.
func DialInstructions(leg domain.CallLeg, callerID string) (string, error) {
	if callerID == "" {
		return "", errors.New("caller id required")
	}

	var target twiml.Element
	switch l := leg.(type) {
	case domain.OutboundLeg:
		if l.Number == "" {
			return "", errors.New("outbound leg without a number")
		}
		target = &twiml.VoiceNumber{PhoneNumber: l.Number}
	case domain.InboundLeg:
		if l.ClientIdentity == "" {
			return "", errors.New("inbound leg without a client identity")
		}
		target = &twiml.VoiceClient{Identity: l.ClientIdentity}
	default:
		return "", fmt.Errorf("unsupported call leg %T", leg)
	}

	dial := &twiml.VoiceDial{
		CallerId:      callerID,
		InnerElements: []twiml.Element{target},
	}
	return twiml.Voice([]twiml.Element{dial})
}
