package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkInsert_EmptyRows(t *testing.T) {
	n, err := BulkInsert(nil, nil, InsertConfig{
		Table:        "votes",
		Columns:      []string{"politician_id", "bill_id", "vote"},
		ConflictKeys: []string{"politician_id", "bill_id"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkInsert_NoColumns(t *testing.T) {
	_, err := BulkInsert(nil, nil, InsertConfig{
		Table: "votes",
	}, [][]any{{1, 2, "Yea"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkInsert_UpdateColsWithoutConflictKeys(t *testing.T) {
	_, err := BulkInsert(nil, nil, InsertConfig{
		Table:      "politicians",
		Columns:    []string{"first_name", "last_name"},
		UpdateCols: []string{"last_name"},
	}, [][]any{{"nancy", "pelosi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update columns require conflict keys")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.votes", `"public"."votes"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeTable(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"id", "name", "value"})
	assert.Equal(t, `"id", "name", "value"`, result)
}
