package service

import (
	"errors"

	"go-storefront-api/internal/model"
	"go-storefront-api/internal/repository"
	"go-storefront-api/pkg/token"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	SignUp(name, email, password string) (*SessionResponse, error)
	Login(email, password string) (*SessionResponse, error)
	Logout(userID uuid.UUID) error
	CurrentUser(userID uuid.UUID) (*model.UserResponse, error)
}

// SessionResponse is returned by both sign-up and login
type SessionResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	users repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{users: userRepo}
}

func (s *authService) SignUp(name, email, password string) (*SessionResponse, error) {
	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		TokenVersion: uuid.New().String(),
	}
	if err := user.SetPassword(password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	return s.session(user)
}

func (s *authService) Login(email, password string) (*SessionResponse, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		// Same error for unknown email and wrong password
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: rotating the version invalidates older tokens
	user.TokenVersion = uuid.New().String()
	if err := s.users.UpdateTokenVersion(user.ID, user.TokenVersion); err != nil {
		return nil, errors.New("failed to update session")
	}

	return s.session(user)
}

func (s *authService) Logout(userID uuid.UUID) error {
	return s.users.UpdateTokenVersion(userID, uuid.New().String())
}

func (s *authService) CurrentUser(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) session(user *model.User) (*SessionResponse, error) {
	signed, err := token.Generate(user.ID, user.Email, user.Name, user.TokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate session token")
	}
	return &SessionResponse{Token: signed, User: user.ToResponse()}, nil
}
