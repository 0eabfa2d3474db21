package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBillNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hr1234", "hr1234"},
		{"H.R. 1234", "hr1234"},
		{"S. 47", "s47"},
		{"HJRES 31", "hjres31"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBillNumber(tt.input))
		})
	}
}

func TestBillIndex_ResolveVariants(t *testing.T) {
	x := NewBillIndex()
	x.Add("hr1234", 42)

	a, ok := x.Resolve("H.R. 1234")
	require.True(t, ok)
	b, ok2 := x.Resolve("hr1234")
	require.True(t, ok2)
	assert.Equal(t, a, b)
	assert.Equal(t, int64(42), a)
}

func TestBillIndex_Miss(t *testing.T) {
	x := NewBillIndex()
	x.Add("hr1234", 42)

	_, ok := x.Resolve("s1234")
	assert.False(t, ok)
}

func TestRollCallIndex_Resolve(t *testing.T) {
	x := NewRollCallIndex()
	x.Add(118, 7, "House", 42)

	id, ok := x.Resolve(118, 7, "House")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = x.Resolve(118, 7, "Senate")
	assert.False(t, ok)

	_, ok = x.Resolve(117, 7, "House")
	assert.False(t, ok)
}

func TestRollCallIndex_ChamberTrimmed(t *testing.T) {
	x := NewRollCallIndex()
	x.Add(118, 7, " House ", 42)

	id, ok := x.Resolve(118, 7, "House")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}
