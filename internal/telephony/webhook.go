package telephony

import "github.com/twilio/twilio-go/client"

// SignatureHeader carries Twilio's request signature.
const SignatureHeader = "X-Twilio-Signature"

// WebhookVerifier checks that a callback was signed with the account auth token.
type WebhookVerifier struct {
	validator client.RequestValidator
}

// NewWebhookVerifier builds a verifier for authToken.
func NewWebhookVerifier(authToken string) *WebhookVerifier {
	return &WebhookVerifier{validator: client.NewRequestValidator(authToken)}
}

// Verify reports whether signature matches the public url and form params of a callback.
func (v *WebhookVerifier) Verify(url string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	return v.validator.Validate(url, params, signature)
}
