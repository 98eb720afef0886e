package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

// CodeType distinguishes the independent verification-code namespaces
type CodeType string

const (
	CodeTypeActivation     CodeType = "ACTIVATION"
	CodeTypePasswordReset  CodeType = "PASSWORD_RESET"
	CodeTypeActivationLink CodeType = "ACTIVATION_LINK" // cooldown tracking for link resends
)

const (
	codeTTL        = 10 * time.Minute
	tokenTTL       = 24 * time.Hour
	resendCooldown = 60 * time.Second
)

// codeKey identifies a live code: one per (type, identifier)
type codeKey struct {
	Type       CodeType
	Identifier string
}

// codeEntry is a stored 6-digit verification code
type codeEntry struct {
	Code      string
	ExpiresAt time.Time
}

// tokenEntry is a stored link-activation token, keyed by the token itself
type tokenEntry struct {
	Email     string
	ExpiresAt time.Time
}

// VerificationService generates, stores and validates short-lived
// verification codes and long-lived activation tokens. All state is
// in-memory and process-local; expiry is enforced lazily at read time
// plus a periodic sweep for memory hygiene.
type VerificationService struct {
	mu       sync.RWMutex
	codes    map[codeKey]*codeEntry
	tokens   map[string]*tokenEntry
	lastSend map[codeKey]time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService() *VerificationService {
	return &VerificationService{
		codes:    make(map[codeKey]*codeEntry),
		tokens:   make(map[string]*tokenEntry),
		lastSend: make(map[codeKey]time.Time),
	}
}

// GenerateCode creates a fresh 6-digit code for (identifier, type), valid
// for 10 minutes. Any prior live code for the same key is overwritten and
// the resend timestamp is reset.
func (s *VerificationService) GenerateCode(identifier string, codeType CodeType) (string, error) {
	code, err := randomDigits(6)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	now := time.Now()
	key := codeKey{Type: codeType, Identifier: identifier}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(now)
	s.codes[key] = &codeEntry{
		Code:      code,
		ExpiresAt: now.Add(codeTTL),
	}
	s.lastSend[key] = now

	return code, nil
}

// VerifyCode reports whether candidate matches the live code for
// (identifier, type). Expired entries are evicted on check. Never errors:
// unknown or expired codes simply report false.
func (s *VerificationService) VerifyCode(identifier string, codeType CodeType, candidate string) bool {
	key := codeKey{Type: codeType, Identifier: identifier}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[key]
	if !ok {
		return false
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(s.codes, key)
		return false
	}
	return entry.Code == strings.TrimSpace(candidate)
}

// RemoveCode deletes the code and its resend timestamp for (identifier, type)
func (s *VerificationService) RemoveCode(identifier string, codeType CodeType) {
	key := codeKey{Type: codeType, Identifier: identifier}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, key)
	delete(s.lastSend, key)
}

// ResendCooldown returns the whole seconds remaining before a new code may
// be requested for (identifier, type), or 0 if none was sent or the 60s
// window has elapsed. Reading the cooldown does not consume the code.
func (s *VerificationService) ResendCooldown(identifier string, codeType CodeType) int {
	key := codeKey{Type: codeType, Identifier: identifier}

	s.mu.RLock()
	sentAt, ok := s.lastSend[key]
	s.mu.RUnlock()

	if !ok {
		return 0
	}
	remaining := resendCooldown - time.Since(sentAt)
	if remaining <= 0 {
		return 0
	}
	return ceilSeconds(remaining)
}

// GenerateActivationToken creates a long-lived link-activation token for an
// email: 32 random bytes, URL-safe base64 without padding, valid 24 hours.
// The resend timestamp is tracked under CodeTypeActivationLink so the same
// cooldown gates link resends.
func (s *VerificationService) GenerateActivationToken(email string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate activation token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(now)
	s.tokens[token] = &tokenEntry{
		Email:     email,
		ExpiresAt: now.Add(tokenTTL),
	}
	s.lastSend[codeKey{Type: CodeTypeActivationLink, Identifier: email}] = now

	return token, nil
}

// VerifyActivationToken returns the email bound to a token if it exists and
// has not expired. Expired tokens are evicted on check. The token is NOT
// consumed; callers remove it explicitly after successful use.
func (s *VerificationService) VerifyActivationToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(s.tokens, token)
		return "", false
	}
	return entry.Email, true
}

// RemoveActivationToken deletes a token after successful use
func (s *VerificationService) RemoveActivationToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// Sweep evicts every expired code, token and stale resend timestamp.
// Called periodically by the janitor in addition to the lazy sweeps.
func (s *VerificationService) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())
}

// sweepLocked removes expired entries. Caller must hold the write lock.
func (s *VerificationService) sweepLocked(now time.Time) {
	for key, entry := range s.codes {
		if now.After(entry.ExpiresAt) {
			delete(s.codes, key)
		}
	}
	for token, entry := range s.tokens {
		if now.After(entry.ExpiresAt) {
			delete(s.tokens, token)
		}
	}
	for key, sentAt := range s.lastSend {
		if now.Sub(sentAt) > resendCooldown {
			delete(s.lastSend, key)
		}
	}
}

// randomDigits generates a cryptographically random zero-padded numeric
// string of the given length
func randomDigits(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// ceilSeconds rounds a positive duration up to whole seconds
func ceilSeconds(d time.Duration) int {
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return int(secs)
}
