package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/mailer"
	"github.com/xdrive/xdrive-logistics/internal/repository"
	"github.com/xdrive/xdrive-logistics/pkg/auth"
	"github.com/xdrive/xdrive-logistics/pkg/config"
	"github.com/xdrive/xdrive-logistics/pkg/events"
	"github.com/xdrive/xdrive-logistics/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	verifyRepo repository.VerifyRepository
	mailer     mailer.Service
	eventBus   events.Publisher
	config     *config.Config
}

func NewAuthService(
	userRepo repository.UserRepository,
	verifyRepo repository.VerifyRepository,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		verifyRepo: verifyRepo,
		mailer:     mailer,
		eventBus:   eventBus,
		config:     config,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	// Pre-insert existence check; the unique index on email is the
	// authoritative guard against concurrent duplicates.
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", domain.ErrConflict
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	verifyToken := uuid.NewString()
	expiresAt := time.Now().Add(s.config.Auth.EmailVerificationTTL)

	if err := s.verifyRepo.SetToken(ctx, user.ID, verifyToken, expiresAt); err != nil {
		logger.ErrorContext(ctx, "Failed to store verification token", "error", err, "user_id", user.ID)
		return nil, "", fmt.Errorf("failed to create verification token: %w", err)
	}

	// Mail delivery is best effort; the account stays pending and the
	// token can be reissued via resend.
	verifyURL := s.buildVerificationURL(verifyToken)
	if err := s.mailer.SendVerificationEmail(user.Email, verifyURL, verifyToken); err != nil {
		logger.ErrorContext(ctx, "Failed to send verification email", "error", err, "user_id", user.ID)
	}

	event := events.UserRegisteredEvent{
		UserID:      user.ID,
		Email:       user.Email,
		AccountType: user.AccountType,
		CreatedAt:   user.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.UserRegistered, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	return user, verifyURL, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// Same failure for unknown email and wrong password.
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	if user.Status != domain.UserActive {
		return nil, domain.ErrNotVerified
	}

	token, err := auth.NewSessionToken(
		user.ID,
		user.Email,
		user.AccountType,
		s.config.Auth.JWTSecret,
		s.config.Auth.SessionTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return &domain.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.ToUserInfo(),
	}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.verifyRepo.Consume(ctx, token)
	if err != nil {
		return nil, err
	}

	event := map[string]any{"user_id": user.ID, "email": user.Email}
	if err := s.eventBus.Publish(ctx, events.UserVerified, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user verified event", "error", err, "user_id", user.ID)
	}

	return user, nil
}

func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// Don't reveal whether the account exists.
		return nil
	}
	if user.Status == domain.UserActive {
		return domain.ErrConflict
	}

	verifyToken := uuid.NewString()
	expiresAt := time.Now().Add(s.config.Auth.EmailVerificationTTL)

	if err := s.verifyRepo.SetToken(ctx, user.ID, verifyToken, expiresAt); err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	verifyURL := s.buildVerificationURL(verifyToken)
	if err := s.mailer.SendVerificationEmail(user.Email, verifyURL, verifyToken); err != nil {
		logger.ErrorContext(ctx, "Failed to send verification email", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *authService) buildVerificationURL(token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", s.config.Server.BaseURL, token)
}
