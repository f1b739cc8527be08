package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/firebase"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 72 * time.Hour

// IdentityVerifier checks a third-party ID token. *firebase.App implements it.
type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, idToken string) (*firebase.Identity, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	verifier       IdentityVerifier
	jwtSecret      string
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. verifier may be nil, in which
// case Firebase login answers 503.
func NewAuthHandler(userRepo repositories.UserRepository, verifier IdentityVerifier, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		verifier:       verifier,
		jwtSecret:      jwtSecret,
		logger:         logger,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	req.Email = strings.ToLower(req.Email)

	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}
	if _, err := h.userRepository.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return httpError(err)
	}

	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(strings.ToLower(req.Email))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return httpError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT. The
// account is found by Firebase UID, then linked by email, and created as a
// last resort.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.verifier == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}

	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	identity, err := h.verifier.VerifyIdentity(c.Request().Context(), req.IDToken)
	if err != nil {
		h.logger.Info("firebase token rejected", zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.linkFirebaseUser(identity)
	if err != nil {
		return httpError(err)
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) linkFirebaseUser(id *firebase.Identity) (*models.User, error) {
	user, err := h.userRepository.GetUserByFirebaseUID(id.UID)
	if err == nil {
		return user, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	email := strings.ToLower(id.Email)
	user, err = h.userRepository.GetUserByEmail(email)
	switch {
	case err == nil:
		uid := id.UID
		user.FirebaseUID = &uid
		if err := h.userRepository.UpdateUser(user); err != nil {
			return nil, err
		}
		return user, nil
	case apperr.KindOf(err) != apperr.KindNotFound:
		return nil, err
	}

	uid := id.UID
	user = &models.User{
		Username:    h.availableUsername(id),
		Email:       email,
		FirebaseUID: &uid,
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// availableUsername derives a valid username from the identity and adds a
// UID suffix when the plain form is taken.
func (h *AuthHandler) availableUsername(id *firebase.Identity) string {
	base := usernameFrom(id.Name)
	if base == "" {
		base = usernameFrom(strings.SplitN(id.Email, "@", 2)[0])
	}
	if len(base) < 3 {
		base = "angler"
	}
	if _, err := h.userRepository.GetUserByUsername(base); err != nil {
		return base
	}
	suffix := usernameFrom(id.UID)
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	if len(base)+1+len(suffix) > 30 {
		base = base[:30-1-len(suffix)]
	}
	return base + "_" + suffix
}

func usernameFrom(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ' || r == '.' || r == '-':
			b.WriteRune('_')
		}
		if b.Len() == 30 {
			break
		}
	}
	return b.String()
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(status, models.AuthResponse{Token: token, User: *user})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
