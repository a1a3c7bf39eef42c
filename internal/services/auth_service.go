package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yoockh/portfolio/internal/auth"
	"github.com/yoockh/portfolio/internal/models"
	mongorepo "github.com/yoockh/portfolio/internal/repositories/mongo"
	"github.com/yoockh/portfolio/internal/utils"
	"github.com/yoockh/portfolio/internal/validation"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	// Authenticate resolves a bearer token to the stored user.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	// EnsureAdmin creates the account with the admin role, or promotes it.
	EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error)
}

type authService struct {
	users  mongorepo.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users mongorepo.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "AuthService.Register"

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	u, err := s.create(ctx, op, in.Name, in.Email, in.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(op, u)
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	const op = "AuthService.Login"

	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if !utils.PasswordMatches(u.PasswordHash, in.Password) {
		return nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", nil)
	}
	return s.issue(op, u)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "AuthService.Authenticate"

	sub, err := s.tokens.Parse(token)
	if err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "Not authorized, token failed", err)
	}
	id, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "Not authorized, token failed", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "Not authorized, user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	return u, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	const op = "AuthService.EnsureAdmin"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "admin email and password are required", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, utils.ErrNotFound):
		if strings.TrimSpace(name) == "" {
			name = "Admin"
		}
		return s.create(ctx, op, strings.TrimSpace(name), email, password, models.RoleAdmin)
	case err != nil:
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	if u.Role != models.RoleAdmin {
		if err := s.users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to promote user", err)
		}
		u.Role = models.RoleAdmin
	}
	return u, nil
}

func (s *authService) create(ctx context.Context, op, name, email, password string, role models.UserRole) (*models.User, error) {
	if len(password) > utils.MaxPasswordBytes {
		return nil, utils.Invalid(op, map[string]string{"password": "Password must be at most 72 bytes long"})
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return nil, utils.E(utils.CodeConflict, op, "User already exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}
	return u, nil
}

func (s *authService) issue(op string, u *models.User) (*AuthResult, error) {
	tok, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return &AuthResult{Token: tok, ExpiresAt: exp, User: u}, nil
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
