package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"project-service/models"
	"project-service/store"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthService handles registration and login. Tokens are issued by the
// security package; this service only verifies credentials.
type AuthService struct {
	users  store.UserStore
	logger *log.Logger
}

func NewAuthService(users store.UserStore, logger *log.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters long", ErrValidation)
	}
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if !models.IsValidRole(in.Role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, in.Role)
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(in.Name, in.Email, string(hashed), in.Role)
	if err := s.users.Insert(ctx, &user); err != nil {
		return nil, err
	}
	s.logger.Printf("Registered %s user %s", user.Role, user.ID.Hex())
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
