// Package clinic holds the backend's business rules. Transports (HTTP JSON
// and gRPC) decode requests, call a Service method and encode the result.
package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"heart-clinic/internal/auth"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/model"
	"heart-clinic/internal/store"
)

// ValidationError is a caller mistake. Transports map it to 400 or
// InvalidArgument.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

type Service struct {
	repo   store.Repository
	secret string
	log    *logger.Logger
	now    func() time.Time

	mu     sync.Mutex
	lastID int64
}

func New(repo store.Repository, secret string, log *logger.Logger) *Service {
	return &Service{repo: repo, secret: secret, log: log, now: time.Now}
}

// nextRecordID returns the creation millisecond, bumped when two records
// land in the same millisecond so ids stay unique and increasing.
func (s *Service) nextRecordID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Service) today() string { return s.now().Format(model.DateLayout) }

// SeedDoctor creates the default doctor account unless it already exists.
func (s *Service) SeedDoctor(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.repo.UserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("seed lookup: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed hash: %w", err)
	}
	err = s.repo.CreateUser(ctx, &model.User{Username: username, PasswordHash: hash, Role: model.RoleDoctor})
	if err != nil && !errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("seed create: %w", err)
	}
	s.log.WithComponent("clinic").WithField("username", username).Info("seeded doctor account")
	return nil
}

func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return invalid("missing %s", f[0])
		}
	}
	return nil
}

// Ready reports whether storage is reachable.
func (s *Service) Ready(ctx context.Context) error { return s.repo.Ping(ctx) }
