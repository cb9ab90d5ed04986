package service

import (
	"errors"
	"testing"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	creds := &entity.Credentials{Email: "ann@example.com", Password: "s3cret"}

	token, err := f.svc.Users.Register(f.ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.True(t, token.ExpiresAt.After(start))

	userID, err := f.svc.Users.Authenticate(f.ctx, token.Token)
	require.NoError(t, err)

	info, err := f.svc.Users.GetInfo(f.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", info.Email)
	assert.Equal(t, []string{}, info.Preferences)

	_, err = f.svc.Users.Register(f.ctx, creds)
	assert.True(t, errors.Is(err, entity.ErrUserAlreadyExists))
	assert.Equal(t, entity.KindConflict, entity.KindOf(err))

	login, err := f.svc.Users.Login(f.ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	tests := []struct {
		name  string
		creds entity.Credentials
	}{
		{"wrong password", entity.Credentials{Email: "ann@example.com", Password: "nope"}},
		{"unknown email", entity.Credentials{Email: "bob@example.com", Password: "s3cret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := tt.creds
			_, err := f.svc.Users.Login(f.ctx, &creds)
			assert.True(t, errors.Is(err, entity.ErrInvalidCredentials))
			assert.Equal(t, entity.KindUnauthorized, entity.KindOf(err))
		})
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		creds entity.Credentials
	}{
		{"missing password", entity.Credentials{Email: "ann@example.com"}},
		{"missing email", entity.Credentials{Password: "s3cret"}},
		{"not an email", entity.Credentials{Email: "ann", Password: "s3cret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := tt.creds
			_, err := f.svc.Users.Register(f.ctx, &creds)
			assert.Equal(t, entity.KindValidation, entity.KindOf(err))
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Users.Authenticate(f.ctx, "not-a-token")
	assert.True(t, errors.Is(err, entity.ErrInvalidToken))

	// signed with the same secret but issued by another store
	other := newFixture(t)
	token, err := other.svc.Users.Register(other.ctx, &entity.Credentials{Email: "ann@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = f.svc.Users.Authenticate(f.ctx, token.Token)
	assert.True(t, errors.Is(err, entity.ErrInvalidToken))
	assert.Equal(t, entity.KindUnauthorized, entity.KindOf(err))
}

func TestUserService_Update(t *testing.T) {
	tests := []struct {
		name     string
		req      entity.UpdateUserRequest
		wantErr  error
		wantKind entity.Kind
		check    func(t *testing.T, f *fixture, info *entity.UserInfo)
	}{
		{
			name:     "no current password",
			req:      entity.UpdateUserRequest{NewEmail: "new@example.com"},
			wantErr:  entity.ErrInvalidInput,
			wantKind: entity.KindValidation,
		},
		{
			name:     "nothing to change",
			req:      entity.UpdateUserRequest{CurrPassword: "s3cret"},
			wantErr:  entity.ErrInvalidInput,
			wantKind: entity.KindValidation,
		},
		{
			name:     "wrong current password",
			req:      entity.UpdateUserRequest{CurrPassword: "wrong", NewEmail: "new@example.com"},
			wantErr:  entity.ErrInvalidPassword,
			wantKind: entity.KindUnauthorized,
		},
		{
			name:     "invalid new email",
			req:      entity.UpdateUserRequest{CurrPassword: "s3cret", NewEmail: "not-an-email"},
			wantErr:  entity.ErrInvalidInput,
			wantKind: entity.KindValidation,
		},
		{
			name:     "same password",
			req:      entity.UpdateUserRequest{CurrPassword: "s3cret", NewPassword: "s3cret"},
			wantErr:  entity.ErrInvalidInput,
			wantKind: entity.KindValidation,
		},
		{
			name:     "blank preference",
			req:      entity.UpdateUserRequest{CurrPassword: "s3cret", Preferences: []string{"quiet", " "}},
			wantErr:  entity.ErrInvalidInput,
			wantKind: entity.KindValidation,
		},
		{
			name:     "email taken",
			req:      entity.UpdateUserRequest{CurrPassword: "s3cret", NewEmail: "bob@example.com"},
			wantErr:  entity.ErrUserAlreadyExists,
			wantKind: entity.KindConflict,
		},
		{
			name: "new email",
			req:  entity.UpdateUserRequest{CurrPassword: "s3cret", NewEmail: "ann@new.example.com"},
			check: func(t *testing.T, f *fixture, info *entity.UserInfo) {
				assert.Equal(t, "ann@new.example.com", info.Email)
				_, err := f.svc.Users.Login(f.ctx, &entity.Credentials{Email: "ann@new.example.com", Password: "s3cret"})
				assert.NoError(t, err)
			},
		},
		{
			name: "new password",
			req:  entity.UpdateUserRequest{CurrPassword: "s3cret", NewPassword: "better"},
			check: func(t *testing.T, f *fixture, info *entity.UserInfo) {
				_, err := f.svc.Users.Login(f.ctx, &entity.Credentials{Email: "ann@example.com", Password: "better"})
				assert.NoError(t, err)
				_, err = f.svc.Users.Login(f.ctx, &entity.Credentials{Email: "ann@example.com", Password: "s3cret"})
				assert.Error(t, err)
			},
		},
		{
			name: "preferences",
			req:  entity.UpdateUserRequest{CurrPassword: "s3cret", Preferences: []string{" quiet ", "wifi"}},
			check: func(t *testing.T, f *fixture, info *entity.UserInfo) {
				assert.Equal(t, []string{"quiet", "wifi"}, info.Preferences)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			token, err := f.svc.Users.Register(f.ctx, &entity.Credentials{Email: "ann@example.com", Password: "s3cret"})
			require.NoError(t, err)
			_, err = f.svc.Users.Register(f.ctx, &entity.Credentials{Email: "bob@example.com", Password: "other"})
			require.NoError(t, err)
			userID, err := f.svc.Users.Authenticate(f.ctx, token.Token)
			require.NoError(t, err)

			req := tt.req
			info, err := f.svc.Users.Update(f.ctx, userID, &req)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, tt.wantKind, entity.KindOf(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, f, info)
		})
	}
}
