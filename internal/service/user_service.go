package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/apperror"
	"clothingstore/pkg/pagination"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   string     `json:"created_at"`
}

type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Login(ctx context.Context, req LoginUserRequest) (*LoginResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page pagination.Params) ([]UserResponse, int64, error)
	CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id string) error
}

type userService struct {
	txManager repository.TransactionManager
	repo      repository.UserRepository
	audit     repository.AuditRepository
	tokens    TokenConfig
	log       *zap.Logger
	now       func() time.Time
}

// NewUserService returns a new instance of UserService
func NewUserService(txManager repository.TransactionManager, repo repository.UserRepository, audit repository.AuditRepository, tokens TokenConfig, log *zap.Logger) UserService {
	return &userService{
		txManager: txManager,
		repo:      repo,
		audit:     audit,
		tokens:    tokens,
		log:       log,
		now:       time.Now,
	}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*LoginResponse, error) {
	invalid := apperror.Unauthorized("invalid email or password")

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, repository.TranslateError(err, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("account is disabled")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokens.TTL).Unix(),
	})
	tokenString, err := token.SignedString(s.tokens.Secret)
	if err != nil {
		return nil, apperror.Internal("failed to generate token", err)
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("Failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return &LoginResponse{Token: tokenString, User: *mapToResponse(user)}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := parseID(id, "user id")
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, repository.TranslateError(err, "user not found")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page pagination.Params) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, repository.TranslateError(err, "")
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (*UserResponse, error) {
	actor, err := parseActor(actorID)
	if err != nil {
		return nil, err
	}
	if !model.ValidRole(req.Role) {
		return nil, apperror.InvalidInput("invalid role: must be admin, manager, or staff")
	}
	if len(req.Password) < 6 {
		return nil, apperror.InvalidInput("password must be at least 6 characters")
	}

	// Hash password automatically
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:    strings.TrimSpace(req.Phone),
		Password: string(hashedPassword),
		Role:     req.Role,
		IsActive: true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("email already exists", err)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionCreateUser, user.ID.String(), user.Name,
			map[string]string{"email": user.Email, "role": user.Role})
	})
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

// DeleteUser removes the account. Ledger entries and orders keep a null user.
func (s *userService) DeleteUser(ctx context.Context, actorID, id string) error {
	actor, err := parseActor(actorID)
	if err != nil {
		return err
	}
	userID, err := parseID(id, "user id")
	if err != nil {
		return err
	}
	if actor != nil && *actor == userID {
		return apperror.InvalidInput("you cannot delete your own account")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.repo.GetByID(txCtx, userID)
		if err != nil {
			return repository.TranslateError(err, "user not found")
		}
		if err := s.repo.Delete(txCtx, userID); err != nil {
			return repository.TranslateError(err, "user not found")
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionDeleteUser, user.ID.String(), user.Name,
			map[string]string{"email": user.Email})
	})
}
