package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"campushub/internal/adapters/persistence/models"
	"campushub/internal/adapters/persistence/repositories"
	"campushub/internal/config"
	"campushub/internal/core/domain"
	"campushub/internal/pkg/jwt"
	"campushub/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrAccountUnactivated = errors.New("account is not activated")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
)

// CooldownError reports that a resend was requested before the cooldown
// window elapsed
type CooldownError struct {
	Seconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("resend cooldown active: %d seconds remaining", e.Seconds)
}

// AuthService handles registration, activation, login, token rotation and
// password reset
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	verification     *VerificationService
	configService    *ConfigService
	mailer           Mailer
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	verification *VerificationService,
	configService *ConfigService,
	mailer Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		verification:     verification,
		configService:    configService,
		mailer:           mailer,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	StudentNo string `json:"student_no" validate:"required"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Register creates an unactivated account and sends both an activation code
// and an activation link. No tokens are issued until activation.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	// 1. Registration must be open
	if !s.configService.OpenRegistration(ctx) {
		return nil, ErrRegistrationClosed
	}

	// 2. Uniqueness checks
	exists, err := s.userRepo.ExistsByStudentNo(ctx, input.StudentNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// 3. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create unactivated user
	user := &models.User{
		StudentNo: input.StudentNo,
		Username:  input.Username,
		Email:     input.Email,
		Password:  hashedPassword,
		RoleLevel: domain.RoleUser.Level(),
		Status:    string(domain.StatusUnactivated),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 5. Issue activation code and link
	if err := s.sendActivationMaterial(ctx, user.Email); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (StudentNo: %s), awaiting activation", user.Username, user.StudentNo)

	return user.ToResponse(), nil
}

// Activate activates an account using the emailed 6-digit code
func (s *AuthService) Activate(ctx context.Context, email, code string) error {
	if !s.verification.VerifyCode(email, CodeTypeActivation, code) {
		return ErrInvalidCode
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.UpdateStatus(ctx, user.ID, string(domain.StatusActive)); err != nil {
		return err
	}

	s.verification.RemoveCode(email, CodeTypeActivation)
	log.Printf("✅ Account activated via code: %s", email)
	return nil
}

// ActivateByLink activates an account using the emailed link token
func (s *AuthService) ActivateByLink(ctx context.Context, token string) error {
	email, ok := s.verification.VerifyActivationToken(token)
	if !ok {
		return ErrInvalidToken
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.UpdateStatus(ctx, user.ID, string(domain.StatusActive)); err != nil {
		return err
	}

	// Token is only consumed once activation has succeeded
	s.verification.RemoveActivationToken(token)
	s.verification.RemoveCode(email, CodeTypeActivation)
	log.Printf("✅ Account activated via link: %s", email)
	return nil
}

// ResendActivation re-sends activation material, subject to the 60s cooldown
func (s *AuthService) ResendActivation(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Status != string(domain.StatusUnactivated) {
		return ErrUserAlreadyExists
	}

	if remaining := s.verification.ResendCooldown(email, CodeTypeActivation); remaining > 0 {
		return &CooldownError{Seconds: remaining}
	}

	return s.sendActivationMaterial(ctx, email)
}

// sendActivationMaterial generates and mails a fresh activation code and
// activation link token
func (s *AuthService) sendActivationMaterial(ctx context.Context, email string) error {
	code, err := s.verification.GenerateCode(email, CodeTypeActivation)
	if err != nil {
		return err
	}
	if err := s.mailer.SendActivationCode(ctx, email, code); err != nil {
		log.Printf("⚠️ Failed to send activation code to %s: %v", email, err)
	}

	token, err := s.verification.GenerateActivationToken(email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendActivationLink(ctx, email, token); err != nil {
		log.Printf("⚠️ Failed to send activation link to %s: %v", email, err)
	}

	return nil
}

// Login authenticates a user and issues a token pair. Only active accounts
// may log in.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find user by username
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password before leaking account state
	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Check account status
	switch domain.AccountStatus(user.Status) {
	case domain.StatusActive:
	case domain.StatusUnactivated:
		return nil, ErrAccountUnactivated
	default:
		return nil, ErrAccountDisabled
	}

	// 4. Generate tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 5. Store refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Username)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken rotates a refresh token and issues a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Find the stored token by hash
	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 3. The account must still be active
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.Status != string(domain.StatusActive) {
		return nil, ErrAccountDisabled
	}

	// 4. Rotate: revoke old, issue and store new
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Username)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
}

// RequestPasswordReset sends a reset code, subject to the 60s cooldown
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if remaining := s.verification.ResendCooldown(email, CodeTypePasswordReset); remaining > 0 {
		return &CooldownError{Seconds: remaining}
	}

	code, err := s.verification.GenerateCode(email, CodeTypePasswordReset)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordResetCode(ctx, email, code); err != nil {
		log.Printf("⚠️ Failed to send reset code to %s: %v", email, err)
	}

	return nil
}

// ResetPassword sets a new password after code verification and revokes all
// existing sessions
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if !s.verification.VerifyCode(email, CodeTypePasswordReset, code) {
		return ErrInvalidCode
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashedPassword, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}

	s.verification.RemoveCode(email, CodeTypePasswordReset)

	// Stolen-session hygiene after a reset
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		log.Printf("⚠️ Failed to revoke sessions for user %d: %v", user.ID, err)
	}

	log.Printf("✅ Password reset for: %s", email)
	return nil
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.StudentNo,
		user.Username,
		user.RoleLevel,
		user.Status,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
