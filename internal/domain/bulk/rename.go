package bulk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/balcao/backend/internal/domain/shared"
)

// RenameTable maps legacy product display names to their current catalog
// names. Lookups are exact and case-sensitive; casing variants are separate keys.
type RenameTable struct {
	version string
	names   map[string]string
}

// NewRenameTable builds a rename table. Canonical names may not themselves be
// keys, so canonicalizing twice always gives the same result as once.
func NewRenameTable(version string, names map[string]string) (RenameTable, error) {
	table := RenameTable{version: version, names: make(map[string]string, len(names))}
	var chained []string
	for legacy, canonical := range names {
		if strings.TrimSpace(legacy) == "" || strings.TrimSpace(canonical) == "" {
			return RenameTable{}, shared.NewDomainError("INVALID_RENAME",
				fmt.Sprintf("rename entry %q -> %q has an empty side", legacy, canonical))
		}
		if legacy == canonical {
			continue
		}
		if next, isKey := names[canonical]; isKey && next != canonical {
			chained = append(chained, fmt.Sprintf("%q -> %q", legacy, canonical))
			continue
		}
		table.names[legacy] = canonical
	}
	if len(chained) > 0 {
		sort.Strings(chained)
		return RenameTable{}, shared.NewDomainError("RENAME_CHAIN",
			"rename targets must be canonical names, found chains: "+strings.Join(chained, ", "))
	}
	return table, nil
}

// Canonicalize returns the canonical name for raw, or raw itself when it is not a legacy name
func (t RenameTable) Canonicalize(raw string) string {
	if canonical, ok := t.names[raw]; ok {
		return canonical
	}
	return raw
}

// Version identifies the revision of the table
func (t RenameTable) Version() string {
	return t.version
}

// Len returns the number of legacy names in the table
func (t RenameTable) Len() int {
	return len(t.names)
}
