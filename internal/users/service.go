package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/lipiprint/lipiprint/internal/shared"
)

var (
	// ErrBadCredentials indicates a failed phone/password check.
	ErrBadCredentials = errors.New("users: invalid credentials")
	// ErrBlocked indicates a blocked account attempting to sign in.
	ErrBlocked = errors.New("users: account is blocked")
)

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, u User) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
}

// Auditor records administrative actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements account management.
type Service struct {
	repo   Store
	audit  Auditor
	logger *slog.Logger
}

// NewService constructs the user service. Auditor may be nil.
func NewService(repo Store, audit Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Register creates a customer account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		GSTIN:        req.GSTIN,
		Role:         RoleUser,
		PasswordHash: string(hash),
	})
}

// Authenticate verifies credentials and refuses blocked accounts.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*User, error) {
	u, err := s.repo.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrBadCredentials
	}
	if u.Blocked {
		return nil, ErrBlocked
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns users matching the filters.
func (s *Service) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	return s.repo.List(ctx, req)
}

// UpdateProfile applies partial profile updates.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*User, error) {
	return s.repo.UpdateProfile(ctx, id, req)
}

// SetBlocked blocks or unblocks an account.
func (s *Service) SetBlocked(ctx context.Context, id int64, blocked bool, actorID int64) error {
	if err := s.repo.SetBlocked(ctx, id, blocked); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "user.block", id, map[string]any{"blocked": blocked})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
