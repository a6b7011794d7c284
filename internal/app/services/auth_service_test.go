package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/db"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
	"github.com/kickabout/kickabout/internal/pkg/auth"
)

type fakeTxRunner struct {
	calls  int
	active bool
}

func (f *fakeTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	f.calls++
	f.active = true
	defer func() { f.active = false }()
	return fn(ctx, nil)
}

type fakeAccountStore struct {
	tx          *fakeTxRunner
	nextID      int64
	users       map[int64]*models.User
	createdInTx bool
}

func newFakeAccountStore(tx *fakeTxRunner) *fakeAccountStore {
	return &fakeAccountStore{tx: tx, nextID: 1, users: make(map[int64]*models.User)}
}

func (f *fakeAccountStore) Create(_ context.Context, _ pgx.Tx, user *models.User) (int64, error) {
	f.createdInTx = f.tx.active
	id := f.nextID
	f.nextID++
	stored := *user
	stored.ID = id
	stored.IsActive = true
	f.users[id] = &stored
	return id, nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeAccountStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountStore) SetEmailVerified(_ context.Context, userID int64) error {
	f.users[userID].EmailVerified = true
	return nil
}

func (f *fakeAccountStore) UpdateLastLogin(context.Context, int64) error { return nil }

type storedVerificationToken struct {
	userID    int64
	token     string
	tokenType string
}

type fakeTokenStore struct {
	tx                 *fakeTxRunner
	verificationTokens []storedVerificationToken
	tokenInTx          bool
	verificationErr    error
	refreshTokens      map[string]int64
}

func newFakeTokenStore(tx *fakeTxRunner) *fakeTokenStore {
	return &fakeTokenStore{tx: tx, refreshTokens: make(map[string]int64)}
}

func (f *fakeTokenStore) CreateVerificationToken(_ context.Context, _ pgx.Tx, userID int64, token, tokenType string, _ time.Time) error {
	if f.verificationErr != nil {
		return f.verificationErr
	}
	f.tokenInTx = f.tx.active
	f.verificationTokens = append(f.verificationTokens, storedVerificationToken{userID: userID, token: token, tokenType: tokenType})
	return nil
}

func (f *fakeTokenStore) GetVerificationToken(_ context.Context, token, tokenType string) (*models.VerificationToken, error) {
	for i, t := range f.verificationTokens {
		if t.token == token && t.tokenType == tokenType {
			return &models.VerificationToken{ID: int64(i + 1), UserID: t.userID, Token: t.token, Type: t.tokenType}, nil
		}
	}
	return nil, apperrors.ErrInvalidEmailToken
}

func (f *fakeTokenStore) MarkVerificationTokenUsed(context.Context, int64) error { return nil }

func (f *fakeTokenStore) CreateRefreshToken(_ context.Context, token string, userID int64, _ time.Time) error {
	f.refreshTokens[token] = userID
	return nil
}

func (f *fakeTokenStore) GetRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	userID, ok := f.refreshTokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return &models.RefreshToken{Token: token, UserID: userID}, nil
}

func (f *fakeTokenStore) DeleteRefreshToken(_ context.Context, token string) error {
	delete(f.refreshTokens, token)
	return nil
}

type fakeEmailService struct {
	verificationEmails []string
	welcomeEmails      []string
}

func (f *fakeEmailService) SendVerificationEmail(toEmail, _, _ string) error {
	f.verificationEmails = append(f.verificationEmails, toEmail)
	return nil
}

func (f *fakeEmailService) SendWelcomeEmail(toEmail, _ string) error {
	f.welcomeEmails = append(f.welcomeEmails, toEmail)
	return nil
}

func jwtServiceForTest() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "unit-test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "kickabout",
	})
}

func newAuthServiceForTest(tx *fakeTxRunner, users *fakeAccountStore, tokens *fakeTokenStore, emails *fakeEmailService) *AuthService {
	location := newLocationServiceForTest(&stubGeocoder{}, newFakeUserStore(), newFakeCommunityStore())
	return NewAuthService(tx, users, tokens, jwtServiceForTest(), emails, location, zerolog.Nop())
}

func registerRequestForTest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     "sam@example.com",
		Password:  "correct-horse",
		FirstName: "Sam",
		LastName:  "Taylor",
	}
}

func TestRegisterWritesAccountAndVerificationTokenAtomically(t *testing.T) {
	tx := &fakeTxRunner{}
	users := newFakeAccountStore(tx)
	tokens := newFakeTokenStore(tx)
	emails := &fakeEmailService{}
	svc := newAuthServiceForTest(tx, users, tokens, emails)

	resp, err := svc.Register(context.Background(), registerRequestForTest())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, 1, tx.calls)
	assert.True(t, users.createdInTx)
	assert.True(t, tokens.tokenInTx)

	require.Len(t, tokens.verificationTokens, 1)
	assert.Equal(t, resp.User.ID, tokens.verificationTokens[0].userID)
	assert.Equal(t, models.TokenTypeEmailVerification, tokens.verificationTokens[0].tokenType)

	// The email goes out only after the transaction committed.
	assert.Equal(t, []string{"sam@example.com"}, emails.verificationEmails)
	assert.NotEmpty(t, resp.Token.AccessToken)
}

func TestRegisterFailsWhenTokenWriteFails(t *testing.T) {
	tx := &fakeTxRunner{}
	users := newFakeAccountStore(tx)
	tokens := newFakeTokenStore(tx)
	tokens.verificationErr = errors.New("insert failed")
	emails := &fakeEmailService{}
	svc := newAuthServiceForTest(tx, users, tokens, emails)

	resp, err := svc.Register(context.Background(), registerRequestForTest())
	require.Error(t, err)
	assert.Nil(t, resp)

	assert.Empty(t, emails.verificationEmails)
	assert.Empty(t, tokens.refreshTokens)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	tx := &fakeTxRunner{}
	users := newFakeAccountStore(tx)
	tokens := newFakeTokenStore(tx)
	svc := newAuthServiceForTest(tx, users, tokens, &fakeEmailService{})

	_, err := svc.Register(context.Background(), registerRequestForTest())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerRequestForTest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrEmailAlreadyExists))
}
