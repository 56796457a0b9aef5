package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/config"
	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/events"
	"github.com/spec-kit/browser-calls/internal/pages"
	"github.com/spec-kit/browser-calls/internal/telephony"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

// CapabilityToken is a signed browser client credential.
type CapabilityToken struct {
	Token            string
	IncomingIdentity string
	ExpiresAt        time.Time
}

// CallService issues client capability tokens and routes voice callbacks.
type CallService struct {
	cfg        config.TwilioConfig
	pages      *pages.Registry
	signer     *telephony.CapabilitySigner
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewCallService builds the service around explicit telephony credentials.
func NewCallService(cfg config.TwilioConfig, registry *pages.Registry, dispatcher events.Dispatcher, logger *zap.Logger) *CallService {
	return &CallService{
		cfg:        cfg,
		pages:      registry,
		signer:     telephony.NewCapabilitySigner(cfg.AccountSID, cfg.AuthToken),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// IncomingIdentity picks the single identity a client may receive calls as. Only an
// authenticated agent on the dashboard page becomes support_agent.
func IncomingIdentity(authenticated bool, requestedPage string, registry *pages.Registry) string {
	if authenticated && registry.Is(pages.Dashboard, requestedPage) {
		return domain.IdentitySupportAgent
	}
	return domain.IdentityCustomer
}

// IssueToken signs a capability token for the caller. agent is nil for anonymous visitors.
func (s *CallService) IssueToken(ctx context.Context, agent *domain.Agent, requestedPage string) (*CapabilityToken, error) {
	if missing := s.cfg.MissingTokenKeys(); len(missing) > 0 {
		return nil, apperrors.NewConfigurationError("telephony credentials missing", map[string]any{"missing": missing})
	}

	authenticated := agent != nil && agent.Active
	identity := IncomingIdentity(authenticated, requestedPage, s.pages)

	token, expiresAt, err := s.signer.Sign(telephony.Grant{
		OutgoingApplicationSID: s.cfg.ApplicationSID,
		IncomingClientName:     identity,
	})
	if err != nil {
		return nil, apperrors.NewConfigurationError("unable to sign capability token", nil)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventCapabilityIssued,
		Payload: events.CapabilityIssuedPayload{
			IncomingIdentity: identity,
			RequestedPage:    requestedPage,
			Authenticated:    authenticated,
		},
	})
	return &CapabilityToken{Token: token, IncomingIdentity: identity, ExpiresAt: expiresAt}, nil
}

// ResolveLeg decides which call shape a callback asks for.
func ResolveLeg(payload domain.CallbackPayload) (domain.CallLeg, error) {
	if payload.PhoneNumber == nil {
		return domain.InboundLeg{ClientIdentity: domain.IdentitySupportAgent}, nil
	}
	number := strings.TrimSpace(*payload.PhoneNumber)
	if number == "" {
		return nil, apperrors.NewBadRequest("phoneNumber must not be blank")
	}
	return domain.OutboundLeg{Number: number}, nil
}

// RouteCall returns the TwiML document the provider should execute for payload.
func (s *CallService) RouteCall(ctx context.Context, payload domain.CallbackPayload) (string, error) {
	if strings.TrimSpace(s.cfg.CallerID) == "" {
		return "", apperrors.NewConfigurationError("telephony caller id missing", map[string]any{"missing": []string{"TWILIO_NUMBER"}})
	}

	leg, err := ResolveLeg(payload)
	if err != nil {
		return "", err
	}

	doc, err := telephony.DialInstructions(leg, s.cfg.CallerID)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	routed := events.CallRoutedPayload{
		CallSID:   payload.CallSID,
		From:      payload.From,
		To:        payload.To,
		Direction: leg.Direction(),
	}
	switch l := leg.(type) {
	case domain.OutboundLeg:
		routed.Target = l.Number
	case domain.InboundLeg:
		routed.Target = l.ClientIdentity
	}
	s.publishEvent(ctx, events.Event{Type: events.EventCallRouted, Payload: routed})
	return doc, nil
}

func (s *CallService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
