package middleware

import (
	"crypto/subtle"
	"strings"

	"katalog/internal/apperror"
	"katalog/internal/metrics"
	"katalog/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IdentityKey is the locals key holding the verified *models.Identity.
const IdentityKey = "identity"

// APIKeyHeader carries the shared client secret.
const APIKeyHeader = "x-api-key"

// Pipeline stages, used as metric labels.
const (
	StageAPIKey = "api_key"
	StageToken  = "token"
	StageRole   = "role"
)

// Denial messages.
const (
	MsgAPIKeyRequired     = "API Key is required"
	MsgAPIKeyInvalid      = "Invalid API Key"
	MsgTokenRequired      = "Token is required"
	MsgTokenInvalid       = "Invalid or expired token"
	MsgInsufficientAccess = "Insufficient permissions"
)

// TokenVerifier turns a bearer token into a caller identity.
type TokenVerifier interface {
	VerifyToken(token string) (*models.Identity, error)
}

// Guard builds the stages of the authorization pipeline. Each stage either
// calls the next handler or returns an *apperror.Error, so a failing stage
// stops the chain.
type Guard struct {
	apiKey   []byte
	verifier TokenVerifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewGuard creates a Guard. m may be nil.
func NewGuard(apiKey string, verifier TokenVerifier, m *metrics.Metrics, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		apiKey:   []byte(apiKey),
		verifier: verifier,
		metrics:  m,
		logger:   logger,
	}
}

// APIKey checks the x-api-key header against the configured secret.
func (g *Guard) APIKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(APIKeyHeader)
		if key == "" {
			return g.deny(c, StageAPIKey, apperror.Unauthorized(MsgAPIKeyRequired))
		}
		if subtle.ConstantTimeCompare([]byte(key), g.apiKey) != 1 {
			return g.deny(c, StageAPIKey, apperror.Unauthorized(MsgAPIKeyInvalid))
		}
		return c.Next()
	}
}

// Token verifies the bearer token and stores the caller identity.
func (g *Guard) Token() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return g.deny(c, StageToken, apperror.Unauthorized(MsgTokenRequired))
		}

		identity, err := g.verifier.VerifyToken(token)
		if err != nil {
			g.logger.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
			return g.deny(c, StageToken, apperror.Unauthorized(MsgTokenInvalid))
		}

		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// Role admits callers whose role is in roles. It must run after Token; a
// request without an identity is forbidden.
func (g *Guard) Role(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return g.deny(c, StageRole, apperror.Forbidden(MsgInsufficientAccess))
		}
		if _, ok := allowed[identity.Role]; !ok {
			return g.deny(c, StageRole, apperror.Forbidden(MsgInsufficientAccess))
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by the token stage.
func IdentityFrom(c *fiber.Ctx) (*models.Identity, bool) {
	identity, ok := c.Locals(IdentityKey).(*models.Identity)
	return identity, ok && identity != nil
}

func (g *Guard) deny(c *fiber.Ctx, stage string, err *apperror.Error) error {
	if g.metrics != nil {
		g.metrics.AuthDenials.WithLabelValues(stage, err.Code).Inc()
	}
	return err
}

// bearer extracts the token from an "Authorization: Bearer <token>" header.
func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
