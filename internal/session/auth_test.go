package session

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"condoflow/internal/config"
	"condoflow/internal/model"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"admin@condoflow.com", true},
		{"admin@condoflow", false},
		{"admin.condoflow.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidEmail)
			}
		})
	}
}

func TestAuthenticateDefaults(t *testing.T) {
	auth, err := NewAuthenticator(nil, zerolog.Nop())
	require.NoError(t, err)

	p, err := auth.Authenticate("admin@condoflow.com", DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, p.Role)

	p, err = auth.Authenticate("Morador@CondoFlow.com", DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, model.RoleResident, p.Role)
	assert.Equal(t, "302", p.Unit)

	_, err = auth.Authenticate("admin@condoflow.com", "654321")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate("someone@condoflow.com", DefaultPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate("admin", DefaultPassword)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	msg, ok := Message(err)
	assert.True(t, ok)
	assert.Equal(t, "Por favor, insira um endereço de e-mail válido.", msg)
}

func TestAuthenticateConfiguredAccounts(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)

	auth, err := NewAuthenticator([]config.Account{{
		Email:        "sindico@example.com",
		PasswordHash: string(hash),
		Name:         "Tom",
		Role:         "admin",
	}}, zerolog.Nop())
	require.NoError(t, err)

	p, err := auth.Authenticate("sindico@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "Tom", p.Name)

	_, err = auth.Authenticate("admin@condoflow.com", DefaultPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = NewAuthenticator([]config.Account{{Email: "x@y.z", PasswordHash: string(hash), Role: "owner"}}, zerolog.Nop())
	assert.Error(t, err)
	_, err = NewAuthenticator([]config.Account{{Email: "x@y.z", PasswordHash: "plain", Role: "admin"}}, zerolog.Nop())
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	auth, err := NewAuthenticator(nil, zerolog.Nop())
	require.NoError(t, err)
	auth.cost = bcrypt.MinCost

	const email = "morador@condoflow.com"
	assert.ErrorIs(t, auth.ChangePassword(email, DefaultPassword, "abcdef", "abcdeg"), ErrPasswordMismatch)
	assert.ErrorIs(t, auth.ChangePassword(email, DefaultPassword, "abc", "abc"), ErrPasswordTooShort)
	assert.ErrorIs(t, auth.ChangePassword(email, "wrong", "abcdef", "abcdef"), ErrWrongPassword)

	require.NoError(t, auth.ChangePassword(email, DefaultPassword, "abcdef", "abcdef"))
	_, err = auth.Authenticate(email, DefaultPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate(email, "abcdef")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	auth, err := NewAuthenticator(nil, zerolog.Nop())
	require.NoError(t, err)

	p := DefaultProfiles()[1]
	p.Email = "ricardo@condoflow.com"
	p.Role = model.RoleAdmin
	updated, err := auth.UpdateProfile("morador@condoflow.com", p)
	require.NoError(t, err)
	assert.Equal(t, model.RoleResident, updated.Role)

	_, err = auth.Authenticate("ricardo@condoflow.com", DefaultPassword)
	assert.NoError(t, err)

	p.Email = "admin@condoflow.com"
	_, err = auth.UpdateProfile("ricardo@condoflow.com", p)
	assert.ErrorIs(t, err, ErrEmailTaken)

	p.Email = "broken"
	_, err = auth.UpdateProfile("ricardo@condoflow.com", p)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}
