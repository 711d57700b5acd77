package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/todo-app/internal/logging"
	"github.com/iliyamo/todo-app/internal/middleware"
	"github.com/iliyamo/todo-app/internal/model"
	"github.com/iliyamo/todo-app/internal/repository" // DB repositories
	"github.com/iliyamo/todo-app/internal/utils"      // password check and token types
)

// UserStore is the part of the credential store the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, username, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID uint64) (utils.AccessToken, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Users      UserStore
	Tokens     TokenIssuer
	BcryptCost int
	Log        logging.Logger
}

func NewAuthHandler(users UserStore, tokens TokenIssuer, bcryptCost int, log logging.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, BcryptCost: bcryptCost, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResp struct {
	Message   string           `json:"message"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      model.PublicUser `json:"user"`
}

func (r *registerReq) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = repository.NormalizeEmail(r.Email)
}

// Register creates a user and returns a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return invalid(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return internalError(c, h.Log, "register: lookup email", err)
	}
	if existing != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User already exists"})
	}

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.BcryptCost)
	if err != nil {
		// username taken, or the email raced in after the lookup
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "User already exists"})
		}
		return internalError(c, h.Log, "register: create user", err)
	}

	tok, err := h.Tokens.Issue(uid)
	if err != nil {
		return internalError(c, h.Log, "register: issue token", err)
	}
	h.Log.Info(ctx, "user registered", "user_id", uid)

	return c.JSON(http.StatusCreated, authResp{
		Message:   "User created successfully",
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
		User:      model.PublicUser{ID: uid, Username: req.Username, Email: req.Email},
	})
}

// Login verifies the credentials and returns a fresh token.  Unknown email
// and wrong password produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	req.Email = repository.NormalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return invalid(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return internalError(c, h.Log, "login: lookup email", err)
	}
	if u == nil {
		utils.BurnPasswordCheck(req.Password, h.BcryptCost)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	}

	tok, err := h.Tokens.Issue(u.ID)
	if err != nil {
		return internalError(c, h.Log, "login: issue token", err)
	}

	return c.JSON(http.StatusOK, authResp{
		Message:   "Login successful",
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
		User:      u.Public(),
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u.Public()})
}
