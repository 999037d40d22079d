package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb/internal/auth"
	"yamdb/internal/config"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

const testSecret = "test-secret-test-secret-test-secret"

type authFixture struct {
	svc    *authService
	users  *MockUserRepository
	tokens *MockRefreshTokenRepository
	mailer *recordingMailer
	now    time.Time
}

func newAuthFixture(t *testing.T, fallbacks ...string) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  new(MockUserRepository),
		tokens: new(MockRefreshTokenRepository),
		mailer: &recordingMailer{},
		now:    time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	cfg := &config.Config{
		SecretKey:          testSecret,
		SecretKeyFallbacks: fallbacks,
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		ConfirmationTTL:    time.Hour,
		MailFrom:           "noreply@yamdb.local",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.svc = NewAuthService(f.users, f.tokens, f.mailer, cfg, logger).(*authService)
	clock := func() time.Time { return f.now }
	f.svc.now = clock
	f.svc.codes = auth.NewCodeGenerator(cfg.Secrets(), cfg.ConfirmationTTL).WithClock(clock)
	return f
}

func (f *authFixture) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.mailer.sent)
	_, code, ok := strings.Cut(f.mailer.sent[len(f.mailer.sent)-1].Body, "Confirmation code: ")
	require.True(t, ok)
	return code
}

func reader() *models.User {
	return &models.User{ID: "u-1", Username: "reader", Email: "reader@example.com", Role: models.RoleUser, IsActive: true}
}

func TestSignup_NewUser(t *testing.T) {
	f := newAuthFixture(t)

	f.users.On("FindByUsernameOrEmail", mock.Anything, "reader", "reader@example.com").Return([]models.User{}, nil)
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = "u-1" }).
		Return(nil)

	user, err := f.svc.Signup(context.Background(), "reader@example.com", "reader")

	require.NoError(t, err)
	assert.Equal(t, "reader", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"reader@example.com"}, f.mailer.sent[0].To)
	assert.NotEmpty(t, f.lastCode(t))
	f.users.AssertExpectations(t)
}

func TestSignup_ExistingUserGetsNewCode(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("FindByUsernameOrEmail", mock.Anything, "reader", "reader@example.com").Return([]models.User{*reader()}, nil)

	user, err := f.svc.Signup(context.Background(), "reader@example.com", "reader")

	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Len(t, f.mailer.sent, 1)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_Mismatch(t *testing.T) {
	f := newAuthFixture(t)
	other := reader()
	other.Email = "other@example.com"
	f.users.On("FindByUsernameOrEmail", mock.Anything, "reader", "reader@example.com").Return([]models.User{*other}, nil)

	_, err := f.svc.Signup(context.Background(), "reader@example.com", "reader")

	assert.ErrorIs(t, err, ErrSignupMismatch)
	assert.Empty(t, f.mailer.sent)
}

func TestSignup_TwoAccountsMatchOneValueEach(t *testing.T) {
	f := newAuthFixture(t)
	byName := models.User{ID: "a", Username: "reader", Email: "a@example.com"}
	byEmail := models.User{ID: "b", Username: "b", Email: "reader@example.com"}
	f.users.On("FindByUsernameOrEmail", mock.Anything, "reader", "reader@example.com").Return([]models.User{byName, byEmail}, nil)

	_, err := f.svc.Signup(context.Background(), "reader@example.com", "reader")

	assert.ErrorIs(t, err, ErrSignupMismatch)
}

func TestSignup_ReservedUsername(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Signup(context.Background(), "me@example.com", "me")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	f.users.AssertNotCalled(t, "FindByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignup_LostRace(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("FindByUsernameOrEmail", mock.Anything, "reader", "reader@example.com").Return([]models.User{}, nil)
	f.users.On("Create", mock.Anything, mock.Anything).
		Return(&repository.ConstraintError{Kind: repository.ErrDuplicate, Field: "username"})

	_, err := f.svc.Signup(context.Background(), "reader@example.com", "reader")

	assert.ErrorIs(t, err, ErrSignupMismatch)
}

func TestSignup_MailFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.err = errors.New("smtp down")
	f.users.On("FindByUsernameOrEmail", mock.Anything, "reader", "reader@example.com").Return([]models.User{*reader()}, nil)

	_, err := f.svc.Signup(context.Background(), "reader@example.com", "reader")

	assert.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestExchangeCode_Success(t *testing.T) {
	f := newAuthFixture(t)
	user := reader()
	f.users.On("FindByUsernameOrEmail", mock.Anything, "reader", "reader@example.com").Return([]models.User{*user}, nil)
	_, err := f.svc.Signup(context.Background(), "reader@example.com", "reader")
	require.NoError(t, err)
	code := f.lastCode(t)

	f.now = f.now.Add(10 * time.Minute)
	f.users.On("FindByUsername", mock.Anything, "reader").Return(user, nil)
	f.users.On("SetLastLogin", mock.Anything, "u-1", f.now).Return(nil)
	f.tokens.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	access, refresh, err := f.svc.ExchangeCode(context.Background(), "reader", code)

	require.NoError(t, err)
	assert.NotEmpty(t, refresh)
	claims, err := f.svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	f.users.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
}

func TestExchangeCode_WrongCode(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("FindByUsername", mock.Anything, "reader").Return(reader(), nil)

	_, _, err := f.svc.ExchangeCode(context.Background(), "reader", "abc-0123456789abcdef0123")

	assert.ErrorIs(t, err, ErrInvalidConfirmation)
	f.users.AssertNotCalled(t, "SetLastLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestExchangeCode_UsedCode(t *testing.T) {
	f := newAuthFixture(t)
	user := reader()
	code := f.svc.codes.Make(codeState(user))

	// the earlier exchange stamped last_login
	at := f.now.Add(time.Minute)
	user.LastLogin = &at
	f.now = f.now.Add(2 * time.Minute)
	f.users.On("FindByUsername", mock.Anything, "reader").Return(user, nil)

	_, _, err := f.svc.ExchangeCode(context.Background(), "reader", code)

	assert.ErrorIs(t, err, ErrInvalidConfirmation)
}

func TestExchangeCode_InactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	user := reader()
	code := f.svc.codes.Make(codeState(user))
	user.IsActive = false
	f.users.On("FindByUsername", mock.Anything, "reader").Return(user, nil)

	_, _, err := f.svc.ExchangeCode(context.Background(), "reader", code)

	assert.ErrorIs(t, err, ErrInvalidConfirmation)
}

func TestExchangeCode_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("FindByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, _, err := f.svc.ExchangeCode(context.Background(), "ghost", "whatever")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshAccessToken_Success(t *testing.T) {
	f := newAuthFixture(t)
	rt := &models.RefreshToken{ID: "rt-1", UserID: "u-1", Token: "opaque", ExpiresAt: f.now.Add(time.Hour)}
	f.tokens.On("FindByToken", mock.Anything, "opaque").Return(rt, nil)
	f.users.On("FindByID", mock.Anything, "u-1").Return(reader(), nil)

	access, err := f.svc.RefreshAccessToken(context.Background(), "opaque")

	require.NoError(t, err)
	claims, err := f.svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestRefreshAccessToken_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		setup func(f *authFixture)
		want  error
	}{
		{
			name: "unknown",
			setup: func(f *authFixture) {
				f.tokens.On("FindByToken", mock.Anything, "opaque").Return(nil, repository.ErrNotFound)
			},
			want: ErrInvalidToken,
		},
		{
			name: "revoked",
			setup: func(f *authFixture) {
				rt := &models.RefreshToken{ID: "rt-1", UserID: "u-1", ExpiresAt: f.now.Add(time.Hour), Revoked: true}
				f.tokens.On("FindByToken", mock.Anything, "opaque").Return(rt, nil)
			},
			want: ErrInvalidToken,
		},
		{
			name: "expired",
			setup: func(f *authFixture) {
				rt := &models.RefreshToken{ID: "rt-1", UserID: "u-1", ExpiresAt: f.now.Add(-time.Second)}
				f.tokens.On("FindByToken", mock.Anything, "opaque").Return(rt, nil)
				f.tokens.On("Delete", mock.Anything, "rt-1").Return(nil)
			},
			want: ErrExpiredToken,
		},
		{
			name: "inactive user",
			setup: func(f *authFixture) {
				rt := &models.RefreshToken{ID: "rt-1", UserID: "u-1", ExpiresAt: f.now.Add(time.Hour)}
				f.tokens.On("FindByToken", mock.Anything, "opaque").Return(rt, nil)
				u := reader()
				u.IsActive = false
				f.users.On("FindByID", mock.Anything, "u-1").Return(u, nil)
			},
			want: ErrInvalidToken,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tc.setup(f)

			_, err := f.svc.RefreshAccessToken(context.Background(), "opaque")

			assert.ErrorIs(t, err, tc.want)
			f.tokens.AssertExpectations(t)
		})
	}
}

func TestRevokeToken(t *testing.T) {
	f := newAuthFixture(t)
	f.tokens.On("FindByToken", mock.Anything, "known").Return(&models.RefreshToken{ID: "rt-1"}, nil)
	f.tokens.On("Revoke", mock.Anything, "rt-1").Return(nil)
	f.tokens.On("FindByToken", mock.Anything, "unknown").Return(nil, repository.ErrNotFound)

	assert.NoError(t, f.svc.RevokeToken(context.Background(), "known"))
	assert.NoError(t, f.svc.RevokeToken(context.Background(), "unknown"))
	f.tokens.AssertExpectations(t)
}

func signed(t *testing.T, secret string, claims Claims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func accessClaims(now time.Time, ttl time.Duration) Claims {
	return Claims{
		UserID:    "u-1",
		Username:  "reader",
		Role:      models.RoleUser,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func TestValidateToken_FallbackSecret(t *testing.T) {
	f := newAuthFixture(t, "old-secret-old-secret-old-secret")
	token := signed(t, "old-secret-old-secret-old-secret", accessClaims(f.now, time.Minute), jwt.SigningMethodHS256)

	claims, err := f.svc.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, "reader", claims.Username)
}

func TestValidateToken_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	refreshType := accessClaims(f.now, time.Minute)
	refreshType.TokenType = "refresh"

	cases := map[string]struct {
		token string
		want  error
	}{
		"expired":        {signed(t, testSecret, accessClaims(f.now.Add(-time.Hour), time.Minute), jwt.SigningMethodHS256), ErrExpiredToken},
		"unknown secret": {signed(t, "some-other-secret-some-other-secret", accessClaims(f.now, time.Minute), jwt.SigningMethodHS256), ErrInvalidToken},
		"other method":   {signed(t, testSecret, accessClaims(f.now, time.Minute), jwt.SigningMethodHS512), ErrInvalidToken},
		"wrong type":     {signed(t, testSecret, refreshType, jwt.SigningMethodHS256), ErrInvalidToken},
		"garbage":        {"not.a.token", ErrInvalidToken},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.ValidateToken(tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
