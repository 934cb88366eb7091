package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Repository returns ErrUserNotFound for unknown users.
type Repository interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	GetCredentialsByID(ctx context.Context, userID int64) (*Credentials, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	Authorize(ctx context.Context, accessToken string) (*errors.User, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo           Repository
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(repo Repository, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentialsByEmail(ctx, dto.Email)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			s.logger.Warn("login for unknown email")
			return AuthTokens{}, errors.ErrInvalidCredentials
		}
		s.logger.Error("failed to load credentials", "error", err)
		return AuthTokens{}, errors.NewInternalError("failed to authenticate", err)
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login with wrong password", "user_id", creds.UserID)
		return AuthTokens{}, errors.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return AuthTokens{}, errors.ErrUserInactive
	}

	s.logger.Info("owner logged in", "user_id", creds.UserID)
	return s.issue(creds)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issue(creds)
}

// Authorize turns a bearer token into the request identity.
func (s *Service) Authorize(ctx context.Context, accessToken string) (*errors.User, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	creds, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &errors.User{ID: creds.UserID, Email: creds.Email, Name: creds.Name}, nil
}

func (s *Service) activeUser(ctx context.Context, userID int64) (*Credentials, error) {
	creds, err := s.repo.GetCredentialsByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrInvalidToken
		}
		s.logger.Error("failed to load user", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if !creds.IsActive {
		return nil, errors.ErrUserInactive
	}
	return creds, nil
}

func (s *Service) issue(creds *Credentials) (AuthTokens, error) {
	accessToken, expiresAt, err := s.tokenGenerator.GenerateAccessToken(creds.UserID, creds.Email)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to issue token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(creds.UserID, creds.Email)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to issue token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string) (string, time.Time, error) {
	expiresAt := time.Now().Add(j.AccessTokenTTL)
	token, err := j.sign(userID, email, tokenTypeAccess, expiresAt, j.AccessTokenSecret)
	return token, expiresAt, err
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, email string) (string, error) {
	return j.sign(userID, email, tokenTypeRefresh, time.Now().Add(j.RefreshTokenTTL), j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(userID int64, email, tokenType string, expiresAt time.Time, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString, tokenType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType || claims.UserID <= 0 {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
