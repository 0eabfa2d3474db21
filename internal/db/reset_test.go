package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTable_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM "votes"`).WillReturnResult(pgxmock.NewResult("DELETE", 42))
	mock.ExpectExec(`ALTER SEQUENCE "votes_vote_id_seq" RESTART WITH 1`).WillReturnResult(pgxmock.NewResult("ALTER SEQUENCE", 0))

	err = ResetTable(context.Background(), mock, "votes", "votes_vote_id_seq")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTable_NoSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM "fec_politician_map"`).WillReturnResult(pgxmock.NewResult("DELETE", 7))

	err = ResetTable(context.Background(), mock, "fec_politician_map", "")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTable_DeleteError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM "votes"`).WillReturnError(fmt.Errorf("relation does not exist"))

	err = ResetTable(context.Background(), mock, "votes", "votes_vote_id_seq")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete from votes")
	assert.NoError(t, mock.ExpectationsWereMet())
}
