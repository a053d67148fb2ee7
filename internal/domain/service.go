package domain

import (
	"context"
	"fmt"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/changes"
	"clubledger/internal/core/id"
	"clubledger/internal/core/tx"
	"clubledger/pkg/logger"
)

// CRUDService provides validated, transactional CRUD for club-owned records.
// Concrete services embed it and add their own operations.
type CRUDService[T Record] struct {
	repo       ClubRepository[T]
	txManager  tx.Manager
	hooks      *HookRegistry[T]
	entityName string
	changes    changes.Notifier
}

// NewCRUDService creates a CRUD service.
func NewCRUDService[T Record](repo ClubRepository[T], txManager tx.Manager, entityName string) *CRUDService[T] {
	return &CRUDService[T]{
		repo:       repo,
		txManager:  txManager,
		hooks:      NewHookRegistry[T](),
		entityName: entityName,
		changes:    changes.Nop{},
	}
}

// NotifyChanges sets who is told about clubs touched by committed writes.
func (s *CRUDService[T]) NotifyChanges(n changes.Notifier) {
	if n != nil {
		s.changes = n
	}
}

// Touched reports committed writes to clubIDs.
func (s *CRUDService[T]) Touched(ctx context.Context, clubIDs ...id.ID) {
	changes.Notify(ctx, s.changes, clubIDs...)
}

// Hooks returns the hook registry for registration by embedding services.
func (s *CRUDService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *CRUDService[T]) validationErr(err error) error {
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewValidation(err.Error())
}

// Create validates and inserts entity.
func (s *CRUDService[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.validationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return s.hooks.Run(ctx, AfterCreate, entity)
	})
	if err != nil {
		return err
	}
	s.Touched(ctx, entity.GetClubID())

	logger.Info(ctx, s.entityName+" created", "id", entity.GetID(), "club", entity.GetClubID())
	return nil
}

// GetByID loads one record of clubID.
func (s *CRUDService[T]) GetByID(ctx context.Context, clubID, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, clubID, entityID)
	if err != nil && apperror.IsNotFound(err) {
		return entity, apperror.NewNotFound(s.entityName, entityID.String())
	}
	return entity, err
}

// Update validates and saves entity.
func (s *CRUDService[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.validationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Touched(ctx, entity.GetClubID())
	return nil
}

// Delete removes a record of clubID.
func (s *CRUDService[T]) Delete(ctx context.Context, clubID, entityID id.ID) error {
	entity, err := s.GetByID(ctx, clubID, entityID)
	if err != nil {
		return err
	}
	if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, clubID, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Touched(ctx, clubID)

	logger.Info(ctx, s.entityName+" deleted", "id", entityID, "club", clubID)
	return nil
}

// List returns a page of records.
func (s *CRUDService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = DefaultListFilter().Limit
	}
	if len(filter.ClubIDs) == 0 {
		return ListResult[T]{Items: []T{}, Limit: filter.Limit, Offset: filter.Offset}, nil
	}
	return s.repo.List(ctx, filter)
}
