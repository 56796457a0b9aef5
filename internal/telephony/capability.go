package telephony

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CapabilityTTL is the lifetime Twilio allows for browser client capability tokens.
const CapabilityTTL = time.Hour

const (
	scopePrefix       = "scope:client:"
	privilegeIncoming = "incoming"
	privilegeOutgoing = "outgoing"
)

// Grant lists what a browser client may do with its token.
type Grant struct {
	// OutgoingApplicationSID is the TwiML application outgoing calls are bound to.
	OutgoingApplicationSID string
	// IncomingClientName is the identity the client registers to receive calls as.
	IncomingClientName string
}

// CapabilityClaims is the JWT payload Twilio Client expects.
type CapabilityClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// CapabilitySigner signs capability tokens with the account auth token.
type CapabilitySigner struct {
	accountSID string
	authToken  []byte
	now        func() time.Time
}

// NewCapabilitySigner returns a signer for the given account credentials.
func NewCapabilitySigner(accountSID, authToken string) *CapabilitySigner {
	return &CapabilitySigner{accountSID: accountSID, authToken: []byte(authToken), now: time.Now}
}

// Sign encodes grant into a token expiring after CapabilityTTL.
func (s *CapabilitySigner) Sign(grant Grant) (string, time.Time, error) {
	if s.accountSID == "" || len(s.authToken) == 0 {
		return "", time.Time{}, errors.New("account sid and auth token required")
	}
	if grant.OutgoingApplicationSID == "" || grant.IncomingClientName == "" {
		return "", time.Time{}, errors.New("grant needs an outgoing application and an incoming client name")
	}

	expiresAt := s.now().Add(CapabilityTTL)
	claims := &CapabilityClaims{
		Scope: encodeScope(grant),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.accountSID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.authToken)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Parse verifies a token signed by this account and decodes its grant.
func (s *CapabilitySigner) Parse(token string) (Grant, *CapabilityClaims, error) {
	claims := &CapabilityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.authToken, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.accountSID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Grant{}, nil, err
	}
	if !parsed.Valid {
		return Grant{}, nil, errors.New("invalid capability token")
	}
	grant, err := decodeScope(claims.Scope)
	if err != nil {
		return Grant{}, nil, err
	}
	return grant, claims, nil
}

// encodeScope renders the space separated scope URIs, incoming first.
func encodeScope(grant Grant) string {
	incoming := url.Values{"clientName": {grant.IncomingClientName}}
	outgoing := url.Values{
		"appSid":     {grant.OutgoingApplicationSID},
		"clientName": {grant.IncomingClientName},
	}
	return scopePrefix + privilegeIncoming + "?" + incoming.Encode() +
		" " + scopePrefix + privilegeOutgoing + "?" + outgoing.Encode()
}

func decodeScope(scope string) (Grant, error) {
	var grant Grant
	var incoming int
	for _, uri := range strings.Fields(scope) {
		rest, ok := strings.CutPrefix(uri, scopePrefix)
		if !ok {
			return Grant{}, fmt.Errorf("unexpected scope %q", uri)
		}
		privilege, rawQuery, _ := strings.Cut(rest, "?")
		params, err := url.ParseQuery(rawQuery)
		if err != nil {
			return Grant{}, fmt.Errorf("scope %q: %w", uri, err)
		}
		switch privilege {
		case privilegeIncoming:
			incoming++
			grant.IncomingClientName = params.Get("clientName")
		case privilegeOutgoing:
			grant.OutgoingApplicationSID = params.Get("appSid")
		default:
			return Grant{}, fmt.Errorf("unknown privilege %q", privilege)
		}
	}
	if incoming != 1 {
		return Grant{}, fmt.Errorf("expected one incoming scope, got %d", incoming)
	}
	return grant, nil
}
