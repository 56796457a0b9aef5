package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/api/http/handlers"
	"github.com/spec-kit/browser-calls/internal/observability"
	"github.com/spec-kit/browser-calls/internal/telephony"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The request logger runs outermost so it sees the status written by the error middleware.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
						zap.Error(domainErr),
					)
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// CSRFProtection guards browser form posts. The token is exposed to templates under
// handlers.CSRFContextKey and submitted back in the csrf_token field.
func CSRFProtection(secureCookies bool) fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:csrf_token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   secureCookies,
		CookieHTTPOnly: true,
		Expiration:     time.Hour,
		ContextKey:     handlers.CSRFContextKey,
		ErrorHandler: func(_ *fiber.Ctx, _ error) error {
			return apperrors.NewForbidden("missing or invalid csrf token")
		},
	})
}

// RequireTwilioSignature rejects callbacks whose X-Twilio-Signature does not match.
// publicBaseURL overrides the scheme and host seen by the server when it sits behind a proxy.
func RequireTwilioSignature(verifier *telephony.WebhookVerifier, publicBaseURL string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params, err := handlers.CallbackParams(c)
		if err != nil {
			return err
		}

		base := publicBaseURL
		if base == "" {
			base = c.BaseURL()
		}
		url := base + c.OriginalURL()

		if !verifier.Verify(url, params, c.Get(telephony.SignatureHeader)) {
			logger.Warn("rejected unsigned callback", zap.String("url", url))
			return apperrors.NewForbidden("invalid request signature")
		}
		return c.Next()
	}
}
