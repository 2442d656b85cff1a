package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
	"taskmanager-api/internal/service"
	"taskmanager-api/pkg/logger"
)

type AuthHandler struct {
	auth     service.AuthService
	validate *validator.Validate
}

func NewAuthHandler(auth service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{auth: auth, validate: validate}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account. The password hash never leaves the service.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.UserCreate
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.auth.RegisterUser(c.UserContext(), req)
	if err != nil {
		if common.KindOf(err) == common.ErrUniqueViolation {
			logger.SecurityLogger.Warn("Duplicate registration", zap.String("username", req.Username))
		}
		return err
	}

	logger.AuditLogger.Info("User registered successfully", zap.String("user_id", user.ID))
	return success(c, fiber.StatusCreated, "User created successfully", user)
}

// readLogin accepts JSON or an urlencoded/multipart form, the latter being what
// OAuth2 password-flow clients send.
func (h *AuthHandler) readLogin(c *fiber.Ctx) (models.LoginRequest, error) {
	var req models.LoginRequest
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		if err := decodeJSON(c, &req); err != nil {
			return req, err
		}
	} else if err := c.BodyParser(&req); err != nil {
		return req, badRequest("Malformed form body")
	}
	req.Username = strings.TrimSpace(req.Username)
	return req, h.validate.Struct(req)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req, err := h.readLogin(c)
	if err != nil {
		return err
	}

	user, ok, err := h.auth.AuthenticateUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	if !ok {
		logger.SecurityLogger.Warn("Invalid credentials",
			zap.String("username", req.Username),
			zap.String("ip", c.IP()),
		)
		return common.Unauthenticated("Incorrect username or password")
	}

	token, err := h.auth.MintAccessToken(user.ID)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Login success", zap.String("user_id", user.ID))
	return success(c, fiber.StatusOK, "Login success", tokenResponse{AccessToken: token, TokenType: "bearer"})
}
