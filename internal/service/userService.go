package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/pkg/auth"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type userService struct {
	users    database.UserRepository
	tokens   *auth.TokenManager
	validate *validator.Validate
}

func newUserService(users database.UserRepository, tokens *auth.TokenManager) UserService {
	return &userService{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Register создает пользователя и сразу выдает токен
func (s *userService) Register(ctx context.Context, creds *entity.Credentials) (*entity.AuthToken, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, entity.Validationf("Email and password are required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, entity.Validationf("Invalid email")
	}

	hashed, err := auth.HashPassword(creds.Password)
	if err != nil {
		return nil, entity.AsStorage(err)
	}

	user := &entity.User{Email: email, PasswordHash: hashed, Preferences: []string{}}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, entity.AsStorage(err)
	}

	logrus.WithField("user_id", user.ID).Info("User registered")
	return s.issue(user)
}

func (s *userService) Login(ctx context.Context, creds *entity.Credentials) (*entity.AuthToken, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, entity.Validationf("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(creds.Email))
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, entity.AsStorage(err)
	}
	if !auth.CheckPassword(user.PasswordHash, creds.Password) {
		return nil, entity.ErrInvalidCredentials
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to a user that still exists
func (s *userService) Authenticate(ctx context.Context, token string) (int64, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return 0, entity.ErrInvalidToken
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return 0, entity.ErrInvalidToken
		}
		return 0, entity.AsStorage(err)
	}
	return claims.UserID, nil
}

func (s *userService) GetInfo(ctx context.Context, userID int64) (*entity.UserInfo, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, entity.AsStorage(err)
	}
	return info(user), nil
}

// Update changes email, password or preferences after checking the current password
func (s *userService) Update(ctx context.Context, userID int64, req *entity.UpdateUserRequest) (*entity.UserInfo, error) {
	if req.CurrPassword == "" {
		return nil, entity.Validationf("User password not provided")
	}
	if req.NewEmail == "" && req.NewPassword == "" && req.Preferences == nil {
		return nil, entity.Validationf("No new information provided")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, entity.AsStorage(err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrPassword) {
		return nil, entity.ErrInvalidPassword
	}

	if email := strings.TrimSpace(req.NewEmail); email != "" && email != user.Email {
		if err := s.validate.Var(email, "email"); err != nil {
			return nil, entity.Validationf("Invalid new email")
		}
		user.Email = email
	}

	if req.NewPassword != "" {
		if req.NewPassword == req.CurrPassword {
			return nil, entity.Validationf("New password must be different from the current password")
		}
		hashed, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			return nil, entity.AsStorage(err)
		}
		user.PasswordHash = hashed
	}

	if req.Preferences != nil {
		prefs := make([]string, 0, len(req.Preferences))
		for _, p := range req.Preferences {
			p = strings.TrimSpace(p)
			if p == "" {
				return nil, entity.Validationf("Preferences must be an array of strings")
			}
			prefs = append(prefs, p)
		}
		user.Preferences = prefs
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, entity.AsStorage(err)
	}

	logrus.WithField("user_id", user.ID).Info("User updated")
	return info(user), nil
}

func (s *userService) issue(user *entity.User) (*entity.AuthToken, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, entity.AsStorage(err)
	}
	return &entity.AuthToken{Token: token, ExpiresAt: expiresAt}, nil
}

func info(user *entity.User) *entity.UserInfo {
	prefs := user.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	return &entity.UserInfo{Email: user.Email, Preferences: prefs}
}
