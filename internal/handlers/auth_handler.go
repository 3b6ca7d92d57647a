package handlers

import (
	"errors"

	"katalog/internal/apperror"
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Login failure messages.
const (
	MsgCredentialsRequired = "Username and password are required"
	MsgInvalidCredentials  = "Invalid credentials"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	guard       *middleware.Guard
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, guard *middleware.Guard, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		guard:       guard,
		validate:    newValidator(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.guard.APIKey(), h.HandleLogin)
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("invalid login body", zap.Error(err))
		return apperror.Validation(MsgCredentialsRequired)
	}

	if err := h.validate.Struct(req); err != nil {
		return apperror.Validation(MsgCredentialsRequired)
	}

	res, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.logger.Info("login rejected", zap.String("username", req.Username))
		return apperror.Unauthorized(MsgInvalidCredentials)
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(res)
}
