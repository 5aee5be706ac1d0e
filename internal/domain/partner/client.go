package partner

import (
	"strings"

	"github.com/balcao/backend/internal/domain/shared"
)

// DefaultImportLocation is stored on clients created by spreadsheet imports
const DefaultImportLocation = "Importado"

// Client represents a customer in the client registry.
// Name is the exact display name and is unique within the registry.
type Client struct {
	shared.BaseEntity
	Name     string
	Phone    string
	Location string
	Notes    string
}

// NewClient creates a new client with the given display name
func NewClient(name, location string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	return &Client{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Location:   strings.TrimSpace(location),
	}, nil
}

// validateClientName rejects blank names; the name is otherwise kept verbatim
func validateClientName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}
