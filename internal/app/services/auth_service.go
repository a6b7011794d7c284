package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/db"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
	"github.com/kickabout/kickabout/internal/pkg/auth"
	"github.com/kickabout/kickabout/internal/pkg/email"
)

const verificationTokenTTL = 24 * time.Hour

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// userAccountStore is the slice of the user repository the auth service
// needs.
type userAccountStore interface {
	Create(ctx context.Context, tx pgx.Tx, user *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SetEmailVerified(ctx context.Context, userID int64) error
	UpdateLastLogin(ctx context.Context, userID int64) error
}

// authTokenStore is the slice of the token repository the auth service
// needs.
type authTokenStore interface {
	CreateVerificationToken(ctx context.Context, tx pgx.Tx, userID int64, token, tokenType string, expiresAt time.Time) error
	GetVerificationToken(ctx context.Context, token, tokenType string) (*models.VerificationToken, error)
	MarkVerificationTokenUsed(ctx context.Context, tokenID int64) error
	CreateRefreshToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}

// AuthService handles authentication operations
type AuthService struct {
	database        txRunner
	userRepo        userAccountStore
	tokenRepo       authTokenStore
	jwtService      *auth.JWTService
	emailService    email.EmailService
	locationService *LocationService
	logger          zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	database txRunner,
	userRepo userAccountStore,
	tokenRepo authTokenStore,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	locationService *LocationService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		database:        database,
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		jwtService:      jwtService,
		emailService:    emailService,
		locationService: locationService,
		logger:          logger,
	}
}

func (s *AuthService) validateEmail(emailAddr string) error {
	if strings.TrimSpace(emailAddr) == "" {
		return apperrors.NewBadRequestError("Email cannot be empty")
	}
	if !emailRegex.MatchString(emailAddr) {
		return apperrors.NewBadRequestError("Email format is invalid")
	}
	return nil
}

func (s *AuthService) validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.NewBadRequestError("Password must be at least 8 characters long")
	}
	return nil
}

// Register creates a new user account, sends a verification email and
// signs the user in. When the request carries an address or postcode the
// location is resolved and a community assigned; failures there are
// logged but never block registration.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hashed,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
	}

	verificationToken, err := email.GenerateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	// The account and its verification token commit together, so a
	// failed token write cannot leave an account nobody can verify.
	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		userID, err := s.userRepo.Create(ctx, tx, user)
		if err != nil {
			return err
		}
		user.ID = userID
		return s.tokenRepo.CreateVerificationToken(ctx, tx, userID, verificationToken,
			models.TokenTypeEmailVerification, time.Now().Add(verificationTokenTTL))
	})
	if err != nil {
		return nil, err
	}

	if err := s.emailService.SendVerificationEmail(user.Email, user.FirstName, verificationToken); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send verification email")
	}

	if address := registrationAddress(req); address != "" {
		if _, err := s.locationService.UpdateUserLocationFromAddress(ctx, user.ID, address); err != nil {
			s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Could not resolve location during registration")
		}
	}

	created, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, created)
}

func registrationAddress(req *dto.RegisterRequest) string {
	if req.Address != nil && *req.Address != "" {
		return *req.Address
	}
	if req.Postcode != nil && *req.Postcode != "" {
		return *req.Postcode
	}
	return ""
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken swaps a valid refresh token for a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	// Rotate: the old token is single use.
	if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to delete rotated refresh token")
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.DeleteRefreshToken(ctx, refreshToken)
}

// VerifyEmail consumes a verification token and activates the email
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	stored, err := s.tokenRepo.GetVerificationToken(ctx, token, models.TokenTypeEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	if err := s.userRepo.SetEmailVerified(ctx, user.ID); err != nil {
		return err
	}
	if err := s.tokenRepo.MarkVerificationTokenUsed(ctx, stored.ID); err != nil {
		s.logger.Warn().Err(err).Int64("tokenID", stored.ID).Msg("Failed to mark verification token used")
	}

	if err := s.emailService.SendWelcomeEmail(user.Email, user.FirstName); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send welcome email")
	}
	return nil
}

// ResendVerification issues a fresh verification token for an unverified
// account. It succeeds silently for unknown emails so the endpoint does
// not leak which addresses are registered.
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	return s.sendVerificationEmail(ctx, user)
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *models.User) error {
	token, err := email.GenerateVerificationToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.tokenRepo.CreateVerificationToken(ctx, tx, user.ID, token, models.TokenTypeEmailVerification, time.Now().Add(verificationTokenTTL))
	})
	if err != nil {
		return err
	}
	if err := s.emailService.SendVerificationEmail(user.Email, user.FirstName, token); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send verification email")
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.CreateRefreshToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             expiresIn,
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: refreshExpiresIn,
		},
		User: dto.FromUser(user),
	}, nil
}
