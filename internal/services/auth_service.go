package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrUsernameTooShort     = errors.New("username too short")
	ErrUsernameTooLong      = errors.New("username too long")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidToken         = errors.New("invalid token")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrFailedToCreateToken  = errors.New("failed to create token")
)

// AuthService handles registration, credential checks and token issuance.
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// Register creates a new user without memberships, together with its token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, *models.AuthToken, error) {
	username := strings.TrimSpace(input.Username)
	if utf8.RuneCountInString(username) < constants.MinUsernameLength {
		return nil, nil, ErrUsernameTooShort
	}
	if utf8.RuneCountInString(username) > constants.MaxUsernameLength {
		return nil, nil, ErrUsernameTooLong
	}
	if utf8.RuneCountInString(input.Password) < constants.MinPasswordLength {
		return nil, nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, ErrFailedToHashPassword
	}

	key, err := utils.GenerateTokenKey()
	if err != nil {
		return nil, nil, ErrFailedToCreateToken
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashedPassword),
	}
	token := &models.AuthToken{Key: key}

	if err := s.userRepo.CreateWithToken(ctx, user, token); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey) && errors.Is(err, repository.ErrCreateUser):
			// lost a race with a concurrent registration of the same name
			return nil, nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrCreateUser):
			return nil, nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateToken):
			return nil, nil, ErrFailedToCreateToken
		default:
			return nil, nil, fmt.Errorf("failed to complete registration: %w", err)
		}
	}

	return user, token, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ObtainToken verifies credentials and returns the user's token, issuing one on first use.
func (s *AuthService) ObtainToken(ctx context.Context, input LoginInput) (*models.AuthToken, *models.User, error) {
	user, err := s.Login(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	key, err := utils.GenerateTokenKey()
	if err != nil {
		return nil, nil, ErrFailedToCreateToken
	}

	token, err := s.tokenRepo.GetOrCreate(ctx, user.ID, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, user, nil
}

// Authenticate resolves a token key to its user.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	token, err := s.tokenRepo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	return &token.User, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
