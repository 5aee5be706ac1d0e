package partner

import "context"

// ClientRepository defines the interface for the client directory
type ClientRepository interface {
	// FindByName finds a client by exact name, returning shared.ErrNotFound if absent
	FindByName(ctx context.Context, name string) (*Client, error)

	// FindByNames returns the clients whose exact names are in names
	FindByNames(ctx context.Context, names []string) ([]Client, error)

	// FindAll returns every client ordered by name
	FindAll(ctx context.Context) ([]Client, error)

	// Create inserts a new client
	Create(ctx context.Context, client *Client) error

	// CreateBatch inserts several clients in one round trip
	CreateBatch(ctx context.Context, clients []*Client) error
}
