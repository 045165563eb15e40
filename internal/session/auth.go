package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"condoflow/internal/config"
	"condoflow/internal/model"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is wrong")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already in use")
)

var messages = map[error]string{
	ErrInvalidEmail:       "Por favor, insira um endereço de e-mail válido.",
	ErrInvalidCredentials: "Credenciais inválidas.",
	ErrWrongPassword:      "Senha atual incorreta.",
	ErrPasswordMismatch:   "As senhas não coincidem.",
	ErrPasswordTooShort:   "A senha deve ter pelo menos 6 caracteres.",
	ErrEmailTaken:         "Este e-mail já está em uso.",
	ErrSessionNotFound:    "Sessão expirada. Faça login novamente.",
}

// Message returns the user-facing text for an error of this package.
func Message(err error) (string, bool) {
	for sentinel, msg := range messages {
		if errors.Is(err, sentinel) {
			return msg, true
		}
	}
	return "", false
}

const minPasswordLength = 6

// DefaultPassword is the password of the built-in demo accounts.
const DefaultPassword = "123456"

// ValidateEmail applies the login form check: an "@" and a ".".
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return ErrInvalidEmail
	}
	return nil
}

// DefaultProfiles are the two demo users.
func DefaultProfiles() []model.UserProfile {
	return []model.UserProfile{
		{
			ID:     "1",
			Name:   "Sarah Johnson",
			Email:  "admin@condoflow.com",
			Role:   model.RoleAdmin,
			Avatar: "https://i.pravatar.cc/150?u=sarah",
			Phone:  "(11) 99876-5432",
			Bio:    "Gestora experiente focada em transparência e eficiência condominial.",
		},
		{
			ID:     "2",
			Name:   "Ricardo Almeida",
			Email:  "morador@condoflow.com",
			Role:   model.RoleResident,
			Avatar: "https://i.pravatar.cc/150?u=ricardo",
			Unit:   "302",
			Block:  "B",
			Phone:  "(11) 91234-5678",
		},
	}
}

type account struct {
	profile model.UserProfile
	hash    []byte
}

// Authenticator checks credentials against a fixed account list.
type Authenticator struct {
	mu       sync.RWMutex
	accounts map[string]*account
	cost     int
	logger   zerolog.Logger
}

// NewAuthenticator builds the account list from configuration. Without
// configured accounts the demo profiles are used with DefaultPassword.
func NewAuthenticator(accounts []config.Account, logger zerolog.Logger) (*Authenticator, error) {
	a := &Authenticator{
		accounts: make(map[string]*account),
		cost:     bcrypt.DefaultCost,
		logger:   logger.With().Str("component", "auth").Logger(),
	}

	if len(accounts) == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), a.cost)
		if err != nil {
			return nil, fmt.Errorf("hash default password: %w", err)
		}
		for _, p := range DefaultProfiles() {
			a.accounts[key(p.Email)] = &account{profile: p, hash: hash}
		}
		return a, nil
	}

	ids := make(map[string]struct{}, len(accounts))
	for i, acc := range accounts {
		role := model.Role(acc.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("account[%d]: invalid role %q", i, acc.Role)
		}
		if err := ValidateEmail(acc.Email); err != nil {
			return nil, fmt.Errorf("account[%d]: invalid email %q", i, acc.Email)
		}
		if _, err := bcrypt.Cost([]byte(acc.PasswordHash)); err != nil {
			return nil, fmt.Errorf("account[%d]: password_hash is not a bcrypt hash", i)
		}
		id := acc.ID
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		if _, dup := ids[id]; dup {
			return nil, fmt.Errorf("account[%d]: duplicate id %q", i, id)
		}
		ids[id] = struct{}{}
		a.accounts[key(acc.Email)] = &account{
			profile: model.UserProfile{
				ID:     id,
				Name:   acc.Name,
				Email:  acc.Email,
				Role:   role,
				Avatar: acc.Avatar,
				Unit:   acc.Unit,
				Block:  acc.Block,
				Phone:  acc.Phone,
				Bio:    acc.Bio,
			},
			hash: []byte(acc.PasswordHash),
		}
	}
	return a, nil
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate returns the profile for valid credentials.
func (a *Authenticator) Authenticate(email, password string) (model.UserProfile, error) {
	if err := ValidateEmail(email); err != nil {
		return model.UserProfile{}, err
	}

	a.mu.RLock()
	acc, ok := a.accounts[key(email)]
	a.mu.RUnlock()
	if !ok {
		return model.UserProfile{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		a.logger.Debug().Str("email", email).Msg("password mismatch")
		return model.UserProfile{}, ErrInvalidCredentials
	}
	return acc.profile, nil
}

// ChangePassword replaces the password after checking the current one.
func (a *Authenticator) ChangePassword(email, current, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if len(next) < minPasswordLength {
		return ErrPasswordTooShort
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	acc, ok := a.accounts[key(email)]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(current)); err != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), a.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acc.hash = hash

	a.logger.Info().Str("email", email).Msg("password changed")
	return nil
}

// UpdateProfile stores an edited profile for the account behind email. The
// email itself may change as long as no other account uses it; the profile ID
// and role never change, so records keyed on the ID stay with the user.
func (a *Authenticator) UpdateProfile(email string, p model.UserProfile) (model.UserProfile, error) {
	if err := ValidateEmail(p.Email); err != nil {
		return model.UserProfile{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	acc, ok := a.accounts[key(email)]
	if !ok {
		return model.UserProfile{}, ErrInvalidCredentials
	}
	if key(p.Email) != key(email) {
		if _, taken := a.accounts[key(p.Email)]; taken {
			return model.UserProfile{}, ErrEmailTaken
		}
		delete(a.accounts, key(email))
		a.accounts[key(p.Email)] = acc
	}

	p.ID = acc.profile.ID
	p.Role = acc.profile.Role
	p.Token = ""
	acc.profile = p
	return p, nil
}
