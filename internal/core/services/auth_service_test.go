package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campushub/internal/adapters/persistence/models"
	"campushub/internal/config"
	"campushub/internal/core/domain"
	"campushub/internal/pkg/jwt"
	"campushub/internal/pkg/password"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByStudentNo(_ context.Context, studentNo string) (*models.User, error) {
	for _, u := range r.users {
		if u.StudentNo == studentNo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	return all, int64(len(all)), nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByStudentNo(ctx context.Context, studentNo string) (bool, error) {
	_, err := r.GetByStudentNo(ctx, studentNo)
	return err == nil, nil
}

// fakeTokenRepo is an in-memory RefreshTokenRepository
type fakeTokenRepo struct {
	tokens map[string]*models.RefreshToken
	nextID uint
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*models.RefreshToken), nextID: 1}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	token.ID = r.nextID
	r.nextID++
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	if t, ok := r.tokens[tokenHash]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) Revoke(_ context.Context, id uint) error {
	for _, t := range r.tokens {
		if t.ID == id {
			now := time.Now()
			t.RevokedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (r *fakeTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) error {
	for hash, t := range r.tokens {
		if t.IsExpired() {
			delete(r.tokens, hash)
		}
	}
	return nil
}

// captureMailer records sent material instead of mailing it
type captureMailer struct {
	codes      map[string]string
	links      map[string]string
	resetCodes map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		codes:      make(map[string]string),
		links:      make(map[string]string),
		resetCodes: make(map[string]string),
	}
}

func (m *captureMailer) SendActivationCode(_ context.Context, email, code string) error {
	m.codes[email] = code
	return nil
}

func (m *captureMailer) SendActivationLink(_ context.Context, email, token string) error {
	m.links[email] = token
	return nil
}

func (m *captureMailer) SendPasswordResetCode(_ context.Context, email, code string) error {
	m.resetCodes[email] = code
	return nil
}

type authFixture struct {
	svc          *AuthService
	users        *fakeUserRepo
	tokens       *fakeTokenRepo
	verification *VerificationService
	mailer       *captureMailer
}

func newAuthFixture(t *testing.T, flags map[string]string) *authFixture {
	t.Helper()
	if flags == nil {
		flags = map[string]string{
			KeyMaintenanceMode:  "false",
			KeyOpenRegistration: "true",
		}
	}

	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	verification := NewVerificationService()
	mailer := newCaptureMailer()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "auth-test-secret",
			RefreshSecret:    "auth-test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}

	svc := NewAuthService(users, tokens, verification,
		NewConfigService(newFakeConfigRepo(flags)), mailer, cfg)

	return &authFixture{
		svc:          svc,
		users:        users,
		tokens:       tokens,
		verification: verification,
		mailer:       mailer,
	}
}

func registerInput() *RegisterInput {
	return &RegisterInput{
		StudentNo: "S2024001",
		Username:  "alice",
		Email:     "alice@campushub.edu",
		Password:  "correct-horse",
	}
}

func TestRegister_CreatesUnactivatedUser(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerInput())
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, string(domain.StatusUnactivated), resp.Status)
	assert.Equal(t, domain.RoleUser.Label(), resp.Role)

	stored, err := f.users.GetByEmail(ctx, "alice@campushub.edu")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", stored.Password, "password is stored hashed")
	assert.True(t, password.Verify("correct-horse", stored.Password))

	assert.NotEmpty(t, f.mailer.codes["alice@campushub.edu"], "activation code was mailed")
	assert.NotEmpty(t, f.mailer.links["alice@campushub.edu"], "activation link was mailed")
}

func TestRegister_ClosedRegistration(t *testing.T) {
	f := newAuthFixture(t, map[string]string{KeyOpenRegistration: "false"})

	_, err := f.svc.Register(context.Background(), registerInput())
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput())
	require.NoError(t, err)

	dup := registerInput()
	dup.Username = "alice2"
	dup.Email = "alice2@campushub.edu"
	_, err = f.svc.Register(ctx, dup)
	assert.ErrorIs(t, err, ErrUserAlreadyExists, "duplicate student number")

	dup = registerInput()
	dup.StudentNo = "S2024002"
	dup.Email = "alice2@campushub.edu"
	_, err = f.svc.Register(ctx, dup)
	assert.ErrorIs(t, err, ErrUserAlreadyExists, "duplicate username")

	dup = registerInput()
	dup.StudentNo = "S2024002"
	dup.Username = "alice2"
	_, err = f.svc.Register(ctx, dup)
	assert.ErrorIs(t, err, ErrUserAlreadyExists, "duplicate email")
}

func TestActivate_WithMailedCode(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput())
	require.NoError(t, err)

	code := f.mailer.codes["alice@campushub.edu"]
	require.NoError(t, f.svc.Activate(ctx, "alice@campushub.edu", code))

	user, err := f.users.GetByEmail(ctx, "alice@campushub.edu")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), user.Status)

	// The code is consumed
	assert.ErrorIs(t, f.svc.Activate(ctx, "alice@campushub.edu", code), ErrInvalidCode)
}

func TestActivate_WrongCode(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput())
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Activate(ctx, "alice@campushub.edu", "000000"), ErrInvalidCode)

	user, err := f.users.GetByEmail(ctx, "alice@campushub.edu")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusUnactivated), user.Status)
}

func TestActivateByLink(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput())
	require.NoError(t, err)

	token := f.mailer.links["alice@campushub.edu"]
	require.NoError(t, f.svc.ActivateByLink(ctx, token))

	user, err := f.users.GetByEmail(ctx, "alice@campushub.edu")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), user.Status)

	// The token is consumed
	assert.ErrorIs(t, f.svc.ActivateByLink(ctx, token), ErrInvalidToken)
}

func TestActivateByLink_UnknownToken(t *testing.T) {
	f := newAuthFixture(t, nil)
	assert.ErrorIs(t, f.svc.ActivateByLink(context.Background(), "bogus"), ErrInvalidToken)
}

func TestResendActivation_Cooldown(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput())
	require.NoError(t, err)

	err = f.svc.ResendActivation(ctx, "alice@campushub.edu")
	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Greater(t, cooldown.Seconds, 0)
	assert.LessOrEqual(t, cooldown.Seconds, 60)
}

func TestResendActivation_AfterCooldown(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput())
	require.NoError(t, err)

	key := codeKey{Type: CodeTypeActivation, Identifier: "alice@campushub.edu"}
	f.verification.mu.Lock()
	f.verification.lastSend[key] = time.Now().Add(-61 * time.Second)
	f.verification.mu.Unlock()

	require.NoError(t, f.svc.ResendActivation(ctx, "alice@campushub.edu"))
	assert.NotEmpty(t, f.mailer.codes["alice@campushub.edu"])
	assert.True(t, f.verification.VerifyCode("alice@campushub.edu", CodeTypeActivation,
		f.mailer.codes["alice@campushub.edu"]), "the freshly mailed code is live")
}

func TestResendActivation_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t, nil)
	err := f.svc.ResendActivation(context.Background(), "nobody@campushub.edu")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func registerAndActivate(t *testing.T, f *authFixture) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerInput())
	require.NoError(t, err)
	require.NoError(t, f.svc.Activate(ctx, "alice@campushub.edu", f.mailer.codes["alice@campushub.edu"]))
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t, nil)
	registerAndActivate(t, f)

	resp, err := f.svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := jwt.ValidateAccessToken(resp.AccessToken, "auth-test-secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser.Level(), claims.RoleLevel)
	assert.Equal(t, string(domain.StatusActive), claims.Status)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t, nil)
	registerAndActivate(t, f)

	_, err := f.svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newAuthFixture(t, nil)

	_, err := f.svc.Login(context.Background(), &LoginInput{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnactivatedAccount(t *testing.T) {
	f := newAuthFixture(t, nil)
	_, err := f.svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAccountUnactivated)
}

func TestLogin_UnactivatedWithWrongPassword(t *testing.T) {
	f := newAuthFixture(t, nil)
	_, err := f.svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	// Bad credentials must not leak the account state
	_, err = f.svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newAuthFixture(t, nil)
	registerAndActivate(t, f)
	ctx := context.Background()

	user, err := f.users.GetByEmail(ctx, "alice@campushub.edu")
	require.NoError(t, err)
	require.NoError(t, f.users.UpdateStatus(ctx, user.ID, string(domain.StatusDisabled)))

	_, err = f.svc.Login(ctx, &LoginInput{Username: "alice", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefreshToken_Rotation(t *testing.T) {
	f := newAuthFixture(t, nil)
	registerAndActivate(t, f)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token is revoked by rotation
	_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The new one still works
	_, err = f.svc.RefreshToken(ctx, refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshToken_Garbage(t *testing.T) {
	f := newAuthFixture(t, nil)
	_, err := f.svc.RefreshToken(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newAuthFixture(t, nil)
	registerAndActivate(t, f)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.RefreshToken))

	_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestPasswordReset_Flow(t *testing.T) {
	f := newAuthFixture(t, nil)
	registerAndActivate(t, f)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@campushub.edu"))
	code := f.mailer.resetCodes["alice@campushub.edu"]
	require.NotEmpty(t, code)

	require.NoError(t, f.svc.ResetPassword(ctx, "alice@campushub.edu", code, "new-password-123"))

	// Old password is dead, new one works
	_, err = f.svc.Login(ctx, &LoginInput{Username: "alice", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, &LoginInput{Username: "alice", Password: "new-password-123"})
	assert.NoError(t, err)

	// All prior sessions were revoked
	_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestPasswordReset_WrongCode(t *testing.T) {
	f := newAuthFixture(t, nil)
	registerAndActivate(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@campushub.edu"))

	err := f.svc.ResetPassword(ctx, "alice@campushub.edu", "000000", "new-password-123")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t, nil)
	err := f.svc.RequestPasswordReset(context.Background(), "nobody@campushub.edu")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
