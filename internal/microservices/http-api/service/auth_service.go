package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"yamdb/internal/auth"
	"yamdb/internal/config"
	"yamdb/internal/mail"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

const tokenTypeAccess = "access"

// Claims carried by access tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Signup finds or creates the user and mails a confirmation code.
	Signup(ctx context.Context, email, username string) (*models.User, error)
	// ExchangeCode trades a valid confirmation code for a token pair.
	ExchangeCode(ctx context.Context, username, code string) (accessToken, refreshToken string, err error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	RevokeToken(ctx context.Context, refreshToken string) error
	ValidateToken(tokenString string) (*Claims, error)
	AccessTokenTTL() time.Duration
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	mailer           mail.Mailer
	codes            *auth.CodeGenerator
	logger           *slog.Logger

	signingKey      []byte
	verifyKeys      [][]byte
	mailFrom        string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	mailer mail.Mailer,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	secrets := cfg.Secrets()
	keys := make([][]byte, 0, len(secrets))
	for _, s := range secrets {
		keys = append(keys, []byte(s))
	}
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		mailer:           mailer,
		codes:            auth.NewCodeGenerator(secrets, cfg.ConfirmationTTL),
		logger:           logger.With("component", "auth"),
		signingKey:       []byte(cfg.SecretKey),
		verifyKeys:       keys,
		mailFrom:         cfg.MailFrom,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
		now:              time.Now,
	}
}

func (s *authService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

func codeState(u *models.User) auth.CodeState {
	return auth.CodeState{UserID: u.ID, Email: u.Email, LastLogin: u.LastLogin}
}

func (s *authService) Signup(ctx context.Context, email, username string) (*models.User, error) {
	if username == models.ReservedUsername {
		return nil, NewValidationError("username", `username "me" is reserved`)
	}

	user, err := s.findOrCreate(ctx, email, username)
	if err != nil {
		return nil, err
	}

	msg := mail.Message{
		From:    s.mailFrom,
		To:      []string{user.Email},
		Subject: "Activate your account",
		Body: fmt.Sprintf("%s, please confirm your email address to finish signing up. "+
			"Confirmation code: %s", user.Username, s.codes.Make(codeState(user))),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		// the user row stays; a retried signup resends the code
		s.logger.ErrorContext(ctx, "confirmation mail failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	s.logger.InfoContext(ctx, "confirmation code sent", "user_id", user.ID)
	return user, nil
}

// findOrCreate returns the account owning both values, creates one when
// neither is taken and fails with ErrSignupMismatch otherwise.
func (s *authService) findOrCreate(ctx context.Context, email, username string) (*models.User, error) {
	users, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		u := users[0]
		if len(users) > 1 || u.Email != email || u.Username != username {
			return nil, ErrSignupMismatch
		}
		return &u, nil
	}

	user := &models.User{Username: username, Email: email, Role: models.RoleUser}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent signup for the same values
			return nil, ErrSignupMismatch
		}
		return nil, fromRepo(err, "username", nil)
	}
	return user, nil
}

func (s *authService) ExchangeCode(ctx context.Context, username, code string) (string, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", "", fromRepo(err, "username", nil)
	}
	if !user.IsActive || !s.codes.Check(codeState(user), code) {
		return "", "", ErrInvalidConfirmation
	}

	// stamping last_login changes the code state, so this code cannot be replayed
	if err := s.userRepo.SetLastLogin(ctx, user.ID, s.now()); err != nil {
		return "", "", err
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", err
	}

	s.logger.InfoContext(ctx, "tokens issued", "user_id", user.ID)
	return accessToken, refreshToken, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

func (s *authService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.refreshTokenTTL),
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}
	return refreshToken.Token, nil
}

// RefreshAccessToken issues a new access token. The refresh token itself is
// not rotated.
func (s *authService) RefreshAccessToken(ctx context.Context, refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if refreshToken.Revoked {
		return "", ErrInvalidToken
	}

	if s.now().After(refreshToken.ExpiresAt) {
		if err := s.refreshTokenRepo.Delete(ctx, refreshToken.ID); err != nil {
			s.logger.WarnContext(ctx, "could not delete expired refresh token", "error", err)
		}
		return "", ErrExpiredToken
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidToken
	}

	return s.generateAccessToken(user)
}

// RevokeToken marks the refresh token revoked. Unknown tokens are not an error.
func (s *authService) RevokeToken(ctx context.Context, refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, refreshToken.ID)
}

// ValidateToken accepts HS256 access tokens signed with the current or a
// fallback secret.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	var lastErr error
	for _, key := range s.verifyKeys {
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims,
			func(*jwt.Token) (any, error) { return key, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(s.now),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			lastErr = err
			if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
				continue
			}
			break
		}
		if !token.Valid || claims.TokenType != tokenTypeAccess || claims.UserID == "" {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	if errors.Is(lastErr, jwt.ErrTokenExpired) {
		return nil, ErrExpiredToken
	}
	return nil, ErrInvalidToken
}
