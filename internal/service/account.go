// Package service — account provisioning.
//
// Sign-in lives in an external identity provider; this service only handles
// the side effect of a first login: making sure the aggregate record exists
// so the user has somewhere to put documents.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/doctalk/internal/apperror"
	"github.com/sakif/doctalk/internal/model"
	"github.com/sakif/doctalk/internal/repository"
)

// AccountService provisions user aggregates.
type AccountService struct {
	store  repository.UserStore
	logger *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(store repository.UserStore, logger *slog.Logger) *AccountService {
	return &AccountService{store: store, logger: logger}
}

// Provision ensures an aggregate exists for the given identity.
//
// WHY TOLERATE A CONFLICT?
// The identity provider guarantees the id is stable, so a repeat login hits
// an id that already has a record. That is the normal case, not an error:
// we fall through to reading the existing aggregate and return it. Only a
// genuinely failing store surfaces an error.
func (s *AccountService) Provision(ctx context.Context, id, email string) (*model.User, error) {
	u, err := s.store.CreateUser(ctx, id, email)
	if err == nil {
		s.logger.Info("user provisioned", slog.String("userId", id))
		return u, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		s.logger.Error("failed to provision user",
			slog.String("userId", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return s.store.GetAggregate(ctx, id)
}
