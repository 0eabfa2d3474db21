package ingest

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStage struct {
	name string
	runs int
	fail bool
}

func (s *fakeStage) Name() string     { return s.name }
func (s *fakeStage) Tables() []string { return nil }

func (s *fakeStage) Run(ctx context.Context, env *Env) (*Result, error) {
	s.runs++
	if s.fail {
		return nil, eris.New("stage blew up")
	}
	return &Result{RowsInserted: 7}, nil
}

func TestEngine_RunContinuesPastFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// First stage fails and is recorded as such; the second still runs.
	mock.ExpectExec("INSERT INTO ingest_log").
		WithArgs(pgxmock.AnyArg(), "first").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE ingest_log").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO ingest_log").
		WithArgs(pgxmock.AnyArg(), "second").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE ingest_log").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	failing := &fakeStage{name: "first", fail: true}
	ok := &fakeStage{name: "second"}

	engine := NewEngine(&Env{Pool: mock}, NewRunLog(mock), []Stage{failing, ok})
	require.NoError(t, engine.Run(context.Background(), nil))

	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, ok.runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_SelectStages(t *testing.T) {
	a := &fakeStage{name: "a"}
	b := &fakeStage{name: "b"}
	c := &fakeStage{name: "c"}
	engine := NewEngine(&Env{}, nil, []Stage{a, b, c})

	selected, err := engine.selectStages(nil)
	require.NoError(t, err)
	assert.Len(t, selected, 3)

	// Registration order wins regardless of the order names are given.
	selected, err = engine.selectStages([]string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "a", selected[0].Name())
	assert.Equal(t, "c", selected[1].Name())
}

func TestEngine_SelectStagesUnknownName(t *testing.T) {
	engine := NewEngine(&Env{}, nil, []Stage{&fakeStage{name: "a"}})
	_, err := engine.selectStages([]string{"a", "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestDefaultStages_Order(t *testing.T) {
	var names []string
	for _, st := range DefaultStages() {
		names = append(names, st.Name())
	}
	assert.Equal(t, []string{"politicians", "bills", "fecmap", "votes", "donations"}, names)
}
