package telephony

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/browser-calls/internal/domain"
)

const (
	testAccountSID = "ACxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"
	testAuthToken  = "secret-auth-token"
	testAppSID     = "APxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"
)

func TestCapabilitySigner_SignAndParse(t *testing.T) {
	signer := NewCapabilitySigner(testAccountSID, testAuthToken)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }

	token, exp, err := signer.Sign(Grant{OutgoingApplicationSID: testAppSID, IncomingClientName: domain.IdentitySupportAgent})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	grant, claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, testAppSID, grant.OutgoingApplicationSID)
	assert.Equal(t, domain.IdentitySupportAgent, grant.IncomingClientName)
	assert.Equal(t, testAccountSID, claims.Issuer)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())

	scopes := strings.Fields(claims.Scope)
	require.Len(t, scopes, 2)
	assert.Equal(t, "scope:client:incoming?clientName=support_agent", scopes[0])
	assert.Equal(t, "scope:client:outgoing?appSid="+testAppSID+"&clientName=support_agent", scopes[1])
}

func TestCapabilitySigner_RejectsForeignSignature(t *testing.T) {
	token, _, err := NewCapabilitySigner(testAccountSID, "other-token").
		Sign(Grant{OutgoingApplicationSID: testAppSID, IncomingClientName: domain.IdentityCustomer})
	require.NoError(t, err)

	_, _, err = NewCapabilitySigner(testAccountSID, testAuthToken).Parse(token)
	assert.Error(t, err)
}

func TestCapabilitySigner_ExpiredToken(t *testing.T) {
	signer := NewCapabilitySigner(testAccountSID, testAuthToken)
	issued := time.Now().Add(-2 * time.Hour)
	signer.now = func() time.Time { return issued }

	token, _, err := signer.Sign(Grant{OutgoingApplicationSID: testAppSID, IncomingClientName: domain.IdentityCustomer})
	require.NoError(t, err)

	signer.now = time.Now
	_, _, err = signer.Parse(token)
	assert.Error(t, err)
}

func TestCapabilitySigner_MissingCredentials(t *testing.T) {
	_, _, err := NewCapabilitySigner("", testAuthToken).
		Sign(Grant{OutgoingApplicationSID: testAppSID, IncomingClientName: domain.IdentityCustomer})
	assert.Error(t, err)

	_, _, err = NewCapabilitySigner(testAccountSID, testAuthToken).
		Sign(Grant{IncomingClientName: domain.IdentityCustomer})
	assert.Error(t, err)
}

func TestDecodeScope_RequiresSingleIncoming(t *testing.T) {
	_, err := decodeScope("scope:client:outgoing?appSid=AP1")
	assert.Error(t, err)

	_, err = decodeScope("scope:client:incoming?clientName=a scope:client:incoming?clientName=b")
	assert.Error(t, err)
}
