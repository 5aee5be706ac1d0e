package bulk

import (
	"testing"

	"github.com/balcao/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenames(t *testing.T) RenameTable {
	t.Helper()
	table, err := NewRenameTable("test", map[string]string{
		"CUBA Black Cherry Strong":      "CUBA Cherry Strong",
		"CUBA White Peach Medium":       "CUBA Peach Medium",
		"K#RWA - Purple Grape":          "K#RWA Collection Blackcurrant - Purple Grape",
		"K#RWA Collection Blackcurrant": "K#RWA Collection Blackcurrant - Purple Grape",
		"Pablo Banana Ice":              "PABLO Exclusive Banana Ice",
	})
	require.NoError(t, err)
	return table
}

func TestRenameTable_Canonicalize(t *testing.T) {
	table := newTestRenames(t)

	assert.Equal(t, "CUBA Cherry Strong", table.Canonicalize("CUBA Black Cherry Strong"))
	assert.Equal(t, "K#RWA Collection Blackcurrant - Purple Grape", table.Canonicalize("K#RWA - Purple Grape"))

	t.Run("lookup is case sensitive", func(t *testing.T) {
		assert.Equal(t, "cuba black cherry strong", table.Canonicalize("cuba black cherry strong"))
	})

	t.Run("unknown names pass through", func(t *testing.T) {
		assert.Equal(t, "VELO Mighty Peppermint", table.Canonicalize("VELO Mighty Peppermint"))
		assert.Equal(t, "", table.Canonicalize(""))
	})
}

func TestRenameTable_Idempotent(t *testing.T) {
	table := newTestRenames(t)
	inputs := []string{
		"CUBA Black Cherry Strong", "CUBA Cherry Strong", "K#RWA - Purple Grape",
		"K#RWA Collection Blackcurrant", "Pablo Banana Ice", "anything else", "",
	}
	for _, x := range inputs {
		once := table.Canonicalize(x)
		assert.Equal(t, once, table.Canonicalize(once), x)
	}
}

func TestNewRenameTable_Validation(t *testing.T) {
	t.Run("rejects chains", func(t *testing.T) {
		_, err := NewRenameTable("v1", map[string]string{
			"A": "B",
			"B": "C",
		})
		require.Error(t, err)
		assert.Equal(t, "RENAME_CHAIN", shared.ErrorCode(err))
		assert.Contains(t, err.Error(), `"A" -> "B"`)
	})

	t.Run("rejects empty sides", func(t *testing.T) {
		_, err := NewRenameTable("v1", map[string]string{"A": " "})
		require.Error(t, err)
		assert.Equal(t, "INVALID_RENAME", shared.ErrorCode(err))
	})

	t.Run("identity entries are dropped", func(t *testing.T) {
		table, err := NewRenameTable("v1", map[string]string{"A": "A", "X": "Y"})
		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
		assert.Equal(t, "v1", table.Version())
	})
}
