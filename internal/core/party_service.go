package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

type partyService struct {
	store  Store
	logger *zap.Logger
}

// NewPartyService constructs a PartyService. A nil logger disables logging.
func NewPartyService(store Store, logger *zap.Logger) PartyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &partyService{store: store, logger: logger.Named("parties")}
}

func clientFromInput(c *Client, input ClientInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	c.Name = name
	c.Phone = strings.TrimSpace(input.Phone)
	c.Email = strings.TrimSpace(input.Email)
	c.Address = strings.TrimSpace(input.Address)
	c.BirthDate = input.BirthDate
	return nil
}

// CreateClient inserts a new client record.
func (s *partyService) CreateClient(ctx context.Context, input ClientInput) (*Client, error) {
	c := &Client{}
	if err := clientFromInput(c, input); err != nil {
		return nil, err
	}
	if err := s.store.InsertClient(ctx, c); err != nil {
		return nil, NewStorageError("insert client", err)
	}
	s.logger.Info("client created", zap.Int("client_id", c.ID))
	return c, nil
}

func (s *partyService) GetClient(ctx context.Context, id int) (*Client, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, NewStorageError("read client", err)
	}
	return c, nil
}

func (s *partyService) ListClients(ctx context.Context) ([]Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, NewStorageError("list clients", err)
	}
	return clients, nil
}

func (s *partyService) UpdateClient(ctx context.Context, id int, input ClientInput) (*Client, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, NewStorageError("read client", err)
	}
	if err := clientFromInput(c, input); err != nil {
		return nil, err
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, NewStorageError("update client", err)
	}
	return c, nil
}

// DeleteClient removes a client that no order references.
func (s *partyService) DeleteClient(ctx context.Context, id int) error {
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetClient(ctx, id); err != nil {
			return NewStorageError("read client", err)
		}
		n, err := tx.CountOrdersForClient(ctx, id)
		if err != nil {
			return NewStorageError("count client orders", err)
		}
		if n > 0 {
			return ErrHasOrders
		}
		if err := tx.DeleteClient(ctx, id); err != nil {
			return NewStorageError("delete client", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("client deleted", zap.Int("client_id", id))
	return nil
}

// CreateSchool inserts a new active school. Names are compared case-insensitively.
func (s *partyService) CreateSchool(ctx context.Context, input SchoolInput) (*School, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	school := &School{
		Name:     name,
		Address:  strings.TrimSpace(input.Address),
		Phone:    strings.TrimSpace(input.Phone),
		IsActive: true,
	}
	err := s.store.WithTx(ctx, func(tx Tx) error {
		_, err := tx.FindSchoolByName(ctx, name)
		switch {
		case err == nil:
			return ErrDuplicateSchool
		case !errors.Is(err, ErrNotFound):
			return NewStorageError("find school", err)
		}
		if err := tx.InsertSchool(ctx, school); err != nil {
			return NewStorageError("insert school", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("school created", zap.Int("school_id", school.ID), zap.String("name", school.Name))
	return school, nil
}

func (s *partyService) GetSchool(ctx context.Context, id int) (*School, error) {
	school, err := s.store.GetSchool(ctx, id)
	if err != nil {
		return nil, NewStorageError("read school", err)
	}
	return school, nil
}

func (s *partyService) ListSchools(ctx context.Context, activeOnly bool) ([]School, error) {
	schools, err := s.store.ListSchools(ctx, activeOnly)
	if err != nil {
		return nil, NewStorageError("list schools", err)
	}
	return schools, nil
}

func (s *partyService) DeactivateSchool(ctx context.Context, id int) error {
	if err := s.store.SetSchoolActive(ctx, id, false); err != nil {
		return NewStorageError("deactivate school", err)
	}
	return nil
}
