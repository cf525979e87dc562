package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"gopher-classifieds/internal/model"
	"gopher-classifieds/internal/pkg/jwtutil"
	"gopher-classifieds/internal/repository"
)

const UsernameMinLength = 3

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// SessionStore remembers the one live token of each user so logout can revoke it.
type SessionStore interface {
	SetToken(ctx context.Context, userID uint, token string, ttl time.Duration) error
	GetToken(ctx context.Context, userID uint) (string, bool, error)
	DeleteToken(ctx context.Context, userID uint) error
}

type AuthService struct {
	userRepo      *repository.UserRepository
	sessions      SessionStore
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username             string `form:"username" json:"username" validate:"required,max=150"`
	Email                string `form:"email" json:"email" validate:"omitempty,email,max=254"`
	Password             string `form:"password" json:"password" validate:"required,min=8,max=128"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation" validate:"required"`
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// sessions may be nil, in which case tokens stay valid until they expire.
func NewAuthService(userRepo *repository.UserRepository, sessions SessionStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		sessions:      sessions,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates an account. It never signs the new user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	verrs := validateStruct(input)
	if verrs == nil {
		verrs = ValidationErrors{}
	}
	if _, bad := verrs["username"]; !bad {
		if n := len([]rune(input.Username)); n < UsernameMinLength {
			verrs["username"] = fmt.Sprintf("username must be at least %d characters", UsernameMinLength)
		} else if !usernamePattern.MatchString(input.Username) {
			verrs["username"] = "username may contain only letters, digits and @/./+/-/_"
		}
	}
	if _, bad := verrs["password_confirmation"]; !bad && input.Password != input.PasswordConfirmation {
		verrs["password_confirmation"] = "the two password fields didn't match"
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	existing, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ValidationErrors{"username": "a user with that username already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ValidationErrors{"username": "a user with that username already exists"}
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := input.Password
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, expiresAt, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if s.sessions != nil {
		if err := s.sessions.SetToken(ctx, user.ID, token, s.jwtExpiration); err != nil {
			return nil, err
		}
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	if s.sessions == nil {
		return nil
	}
	return s.sessions.DeleteToken(ctx, userID)
}

// Authenticate checks a presented token and returns its claims. With a
// session store the token must also be the user's current one.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*jwtutil.Claims, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	if s.sessions == nil {
		return claims, nil
	}
	current, ok, err := s.sessions.GetToken(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !ok || current != token {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(ctx, id)
}
