package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = time.Hour

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for any token that fails verification.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// dummyHash is compared against when the username is unknown so that both
// failure paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("katalog-dummy-password"), bcrypt.DefaultCost)

// Claims is the payload of an issued token.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  TokenTTL,
	}
}

// HashPassword returns the bcrypt hash stored for a user.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Login authenticates a user and returns a signed token with the user's
// public summary.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token: token,
		User: models.UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken checks signature, algorithm and expiry and returns the caller
// identity carried by the token.
func (s *AuthService) VerifyToken(tokenString string) (*models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	// StandardClaims.Valid accepts a token without exp.
	if claims.ExpiresAt == 0 {
		return nil, ErrInvalidToken
	}

	return &models.Identity{
		SubjectID: claims.ID,
		Username:  claims.Username,
		Role:      claims.Role,
	}, nil
}
