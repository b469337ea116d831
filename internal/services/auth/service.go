package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	// tokenIssuer is the iss claim on every issued token
	tokenIssuer = "equitas"

	bcryptCost        = 10
	maxPasswordLength = 72
)

// ErrInvalidToken is returned for missing, expired, or tampered tokens
var ErrInvalidToken = errors.New("invalid token")

// credentials is the validated shape of a signup request
type credentials struct {
	UserName string `validate:"required,min=3,max=50"`
	Password string `validate:"required,min=6"`
}

// Service issues and verifies bearer tokens for local accounts
type Service struct {
	users    interfaces.UserStorage
	config   common.AuthConfig
	validate *validator.Validate
	logger   arbor.ILogger
}

// Compile-time assertion
var _ interfaces.AuthService = (*Service)(nil)

// NewService creates a new auth service
func NewService(users interfaces.UserStorage, config common.AuthConfig, logger arbor.ILogger) *Service {
	return &Service{
		users:    users,
		config:   config,
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidationError describes a rejected signup field
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		if e.Field == "password" {
			return "password must be at least 6 characters"
		}
		return fmt.Sprintf("%s must be at least 3 characters", e.Field)
	case "max":
		return fmt.Sprintf("%s must be at most 50 characters", e.Field)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

// Signup creates a user account and returns a token for it
func (s *Service) Signup(ctx context.Context, userName, password string) (string, *models.User, error) {
	userName = strings.TrimSpace(userName)

	if err := s.validateCredentials(userName, password); err != nil {
		return "", nil, err
	}

	user, err := s.createUser(ctx, userName, password, models.RoleUser)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Login checks credentials and returns a fresh token. Unknown users and
// wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, userName, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByName(ctx, userName)
	if err != nil {
		if errors.Is(err, interfaces.ErrUserNotFound) {
			return "", nil, interfaces.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), truncatePassword(password)); err != nil {
		s.logger.Debug().Str("user_name", user.UserName).Msg("Login rejected")
		return "", nil, interfaces.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User logged in")
	return token, user, nil
}

// IssueToken signs an HS256 token carrying the user's id, name and role
func (s *Service) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.UserName,
		"role": string(user.Role),
		"iss":  tokenIssuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.config.GetTokenExpiry()).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature, algorithm, issuer and expiry and
// returns the identity the token was issued for.
func (s *Service) VerifyToken(tokenString string) (*models.Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	return &models.Identity{
		UserID:   subject,
		UserName: name,
		Role:     models.Role(role),
	}, nil
}

// EnsureAdmin creates the configured admin account if it does not exist yet
func (s *Service) EnsureAdmin(ctx context.Context) error {
	if s.config.AdminUsername == "" || s.config.AdminPassword == "" {
		return nil
	}

	if _, err := s.users.GetUserByName(ctx, s.config.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, interfaces.ErrUserNotFound) {
		return err
	}

	user, err := s.createUser(ctx, s.config.AdminUsername, s.config.AdminPassword, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, interfaces.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info().Str("user_name", user.UserName).Msg("Admin user created")
	return nil
}

func (s *Service) validateCredentials(userName, password string) error {
	err := s.validate.Struct(credentials{UserName: userName, Password: password})
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		field := "userName"
		if fieldErrors[0].Field() == "Password" {
			field = "password"
		}
		return &ValidationError{Field: field, Rule: fieldErrors[0].Tag()}
	}
	return err
}

func (s *Service) createUser(ctx context.Context, userName, password string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           common.NewUserID(),
		UserName:     userName,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// truncatePassword applies bcrypt's 72 byte input limit
func truncatePassword(password string) []byte {
	passwordBytes := []byte(password)
	if len(passwordBytes) > maxPasswordLength {
		passwordBytes = passwordBytes[:maxPasswordLength]
	}
	return passwordBytes
}
