package authservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

const codeAttempts = 5

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice
type Repo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserSuspended      = errors.New("account is suspended")
	ErrInvalidRole        = errors.New("invalid role")
)

type NewUser struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role
}

type Service struct {
	userRepo    Repo
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	tokenTTL    time.Duration
	newCode     func() string
}

func New(repo Repo, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface, tokenTTL time.Duration) *Service {
	return &Service{
		userRepo:    repo,
		hashService: hashService,
		jwtService:  jwtService,
		tokenTTL:    tokenTTL,
		newCode:     validate.NewReferralCode,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new active user with a fresh referral code. A code
// collision is retried with another code.
func (s *Service) CreateUser(ctx context.Context, nu NewUser) (*domain.User, error) {
	if !nu.Role.Valid() {
		return nil, ErrInvalidRole
	}
	email := normalizeEmail(nu.Email)
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if existingUser != nil {
		zap.L().Info("user already exists", zap.String("email", email))
		return nil, ErrEmailTaken
	}

	hashedPassword, err := s.hashService.HashPassword(nu.Password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, err
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		user := &domain.User{
			Email:        email,
			FullName:     strings.TrimSpace(nu.FullName),
			PasswordHash: hashedPassword,
			Role:         nu.Role,
			Status:       domain.UserActive,
			ReferralCode: s.newCode(),
		}
		newUser, err := s.userRepo.Create(ctx, user)
		if err == nil {
			zap.L().Info("user successfully created", zap.String("email", email), zap.String("role", string(nu.Role)))
			return newUser, nil
		}
		if !errors.Is(err, pg.ErrDuplicate) {
			zap.L().Error("can't create user: ", zap.Error(err))
			return nil, err
		}
		// either the email was registered concurrently or the code collided
		if taken, findErr := s.userRepo.FindByEmail(ctx, email); findErr != nil {
			return nil, findErr
		} else if taken != nil {
			return nil, ErrEmailTaken
		}
	}
	return nil, errors.New("can't allocate a unique referral code")
}

func (s *Service) Register(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	return s.CreateUser(ctx, NewUser{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     domain.RoleUser,
	})
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil || user == nil {
		zap.L().Info("invalid credentials", zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		zap.L().Info("invalid credentials", zap.String("email", user.Email))
		return nil, ErrInvalidCredentials
	}
	if user.Status == domain.UserSuspended {
		return nil, ErrUserSuspended
	}
	zap.L().Info("user successfully authenticated", zap.String("email", user.Email))
	return user, nil
}

func (s *Service) GenerateToken(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenTTL)

	token, err := s.jwtService.GenerateJWT(user.ID, string(user.Role), expirationTime)
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return "", err
	}
	return token, nil
}
