package core

import (
	"context"
	"time"
)

// ClientInput holds the fields required to register or update a client.
type ClientInput struct {
	Name      string
	Phone     string
	Email     string
	Address   string
	BirthDate *time.Time
}

// SchoolInput holds the fields required to register a school.
type SchoolInput struct {
	Name    string
	Address string
	Phone   string
}

// PartyService provides client and school master data operations.
type PartyService interface {
	// CreateClient registers a new client. Name is required.
	CreateClient(ctx context.Context, input ClientInput) (*Client, error)
	GetClient(ctx context.Context, id int) (*Client, error)
	// ListClients returns all clients ordered by name.
	ListClients(ctx context.Context) ([]Client, error)
	UpdateClient(ctx context.Context, id int, input ClientInput) (*Client, error)
	// DeleteClient fails with ErrHasOrders while any order references the client.
	DeleteClient(ctx context.Context, id int) error

	// CreateSchool fails with ErrDuplicateSchool when the name is taken.
	CreateSchool(ctx context.Context, input SchoolInput) (*School, error)
	GetSchool(ctx context.Context, id int) (*School, error)
	ListSchools(ctx context.Context, activeOnly bool) ([]School, error)
	DeactivateSchool(ctx context.Context, id int) error
}
