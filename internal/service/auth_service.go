package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/sticky-notes/internal/config"
	"github.com/dom/sticky-notes/internal/domain"
	"github.com/dom/sticky-notes/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	validate *validator.Validate
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		validate: newValidator(),
		log:      log.Named("auth"),
	}
}

// RegisterInput fields are validated in declaration order.
type RegisterInput struct {
	Name     string `validate:"min=1,max=100"`
	Email    string `validate:"email"`
	Username string `validate:"min=1,max=20"`
	Password string `validate:"min=6,max=100"`
}

type LoginInput struct {
	Identifier string
	Password   string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

// Claims binds a session token to a user id carried in the subject.
type Claims struct {
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	user, err := s.Signup(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.result(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.Authenticate(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.result(user)
}

func (s *AuthService) result(user *domain.User) (*AuthResult, error) {
	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Signup validates the input, enforces username/email uniqueness and stores
// the user with a bcrypt hash of the password.
func (s *AuthService) Signup(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Name == "" || input.Email == "" || input.Username == "" || input.Password == "" {
		return nil, domain.ErrMissingFields
	}

	if err := firstFieldError(s.validate, input, signupFieldError); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	taken, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent signup.
			return nil, s.duplicateError(ctx, input.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}

func (s *AuthService) duplicateError(ctx context.Context, username string) error {
	if taken, err := s.userRepo.ExistsByUsername(ctx, username); err == nil && taken {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailTaken
}

func signupFieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "Name":
		return domain.ErrInvalidName
	case "Email":
		return domain.ErrInvalidEmail
	case "Username":
		return domain.ErrInvalidUsername
	case "Password":
		return domain.ErrInvalidPassword
	}
	return domain.ErrMissingFields
}

// Authenticate resolves the identifier as an email when it looks like one,
// otherwise as a username, and verifies the password.
func (s *AuthService) Authenticate(ctx context.Context, input LoginInput) (*domain.User, error) {
	if input.Identifier == "" || input.Password == "" {
		return nil, domain.ErrMissingFields
	}

	var (
		user *domain.User
		err  error
	)
	if isEmail(s.validate, input.Identifier) {
		user, err = s.userRepo.GetByEmail(ctx, input.Identifier)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, input.Identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.loginError(domain.ErrInvalidIdentifier)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, s.loginError(domain.ErrIncorrectPassword)
	}

	return user, nil
}

// loginError collapses login failures into one message when configured to.
func (s *AuthService) loginError(err error) error {
	if s.cfg.UniformLoginErrors {
		return domain.ErrInvalidCredentials
	}
	return err
}

func (s *AuthService) IssueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken returns the user id bound to a valid, unexpired token.
// Every failure is reported as domain.ErrInvalidToken.
func (s *AuthService) ValidateToken(tokenString string) (uuid.UUID, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return uuid.Nil, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}
	return userID, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
