package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paper-trail/papertrail/internal/model"
)

func TestCastToVote(t *testing.T) {
	tests := []struct {
		code     int
		expected string
		ok       bool
	}{
		{1, model.VoteYea, true},
		{2, model.VoteYea, true},
		{3, model.VoteYea, true},
		{4, model.VoteNay, true},
		{5, model.VoteNay, true},
		{6, model.VoteNay, true},
		{0, model.VoteNotVoting, true},
		{7, model.VoteNotVoting, true},
		{8, model.VoteNotVoting, true},
		{9, model.VoteNotVoting, true},
		{10, "", false},
		{-1, "", false},
	}
	for _, tt := range tests {
		got, ok := castToVote(tt.code)
		assert.Equal(t, tt.ok, ok, "code %d", tt.code)
		assert.Equal(t, tt.expected, got, "code %d", tt.code)
	}
}
