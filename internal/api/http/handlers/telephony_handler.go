package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/browser-calls/internal/api/dto"
	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/service"
	"github.com/spec-kit/browser-calls/internal/telephony"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

// TelephonyHandler serves capability tokens and voice callbacks.
type TelephonyHandler struct {
	calls *service.CallService
}

// NewTelephonyHandler constructs handler.
func NewTelephonyHandler(calls *service.CallService) *TelephonyHandler {
	return &TelephonyHandler{calls: calls}
}

// Token handles GET /token?forPage=<path>.
func (h *TelephonyHandler) Token(c *fiber.Ctx) error {
	token, err := h.calls.IssueToken(c.UserContext(), currentAgent(c), c.Query("forPage"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(dto.TokenResponse{Token: token.Token})
}

// Call handles POST /call from the telephony provider.
func (h *TelephonyHandler) Call(c *fiber.Ctx) error {
	params, err := CallbackParams(c)
	if err != nil {
		return err
	}

	payload := domain.CallbackPayload{
		CallSID: params["CallSid"],
		From:    params["From"],
		To:      params["To"],
	}
	if number, ok := params["phoneNumber"]; ok {
		payload.PhoneNumber = &number
	}

	doc, err := h.calls.RouteCall(c.UserContext(), payload)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, telephony.TwiMLContentType)
	return c.Status(fiber.StatusOK).SendString(doc)
}

// CallbackParams reads the form fields of a provider callback. An empty body has no fields;
// any other body must be form encoded.
func CallbackParams(c *fiber.Ctx) (map[string]string, error) {
	params := map[string]string{}
	if len(c.Body()) == 0 {
		return params, nil
	}

	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			params[string(key)] = string(value)
		})
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, apperrors.NewBadRequest("malformed multipart callback body")
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
	default:
		return nil, apperrors.NewBadRequest("callback body must be form encoded")
	}
	return params, nil
}
