package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zehnify/api/internal/ids"
	"zehnify/api/internal/models"
	"zehnify/api/internal/repository"
	"zehnify/api/internal/security"
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike, so callers cannot tell which accounts exist.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)

type AuthService struct {
	users  UserStore
	tokens *security.TokenIssuer
	log    zerolog.Logger
	hash   func(password string) ([]byte, error)
	verify func(password string, hash []byte) (bool, error)
	now    func() time.Time

	decoyOnce sync.Once
	decoy     []byte
}

func NewAuthService(users UserStore, tokens *security.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
		hash:   security.HashPassword,
		verify: security.VerifyPassword,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := checkInput(input); err != nil {
		return AuthResult{}, err
	}

	passwordHash, err := s.hash(input.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := models.User{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         models.UserRoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// the unique index on email decides races between concurrent registrations
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return AuthResult{}, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// unknown emails cost the same hash work as a wrong password
			_, _ = s.verify(input.Password, s.decoyHash())
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.verify(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	if security.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, input.Password)
	}

	return s.issue(user)
}

// decoyHash is made once with the current parameters and matches no real password.
func (s *AuthService) decoyHash() []byte {
	s.decoyOnce.Do(func() {
		hash, err := s.hash(ids.New())
		if err != nil {
			s.log.Error().Err(err).Msg("decoy password hash failed")
			return
		}
		s.decoy = hash
	})
	return s.decoy
}

// VerifyToken checks a bearer token without touching storage.
func (s *AuthService) VerifyToken(token string) (*security.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return claims, nil
}

// Authenticate verifies the token and loads its user, so role changes apply
// to tokens issued before them.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// upgradeHash replaces legacy or outdated hashes after a successful login.
// Failure only costs another attempt on the next login.
func (s *AuthService) upgradeHash(ctx context.Context, user models.User, password string) {
	hash, err := s.hash(password)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("rehash password failed")
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("store upgraded password hash failed")
		return
	}
	s.log.Info().Str("user_id", user.ID).Msg("password hash upgraded")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
