package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	exists bool
	err    error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*bool)) = r.exists
	return nil
}

type mockQuerier struct{ mock.Mock }

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.Called(ctx, sql, args).Get(0).(pgx.Row)
}

func TestMemory(t *testing.T) {
	d := NewMemory(" Alice@Test.com", "", "alice@test.com", "bob@test.com")
	ctx := context.Background()

	assert.ElementsMatch(t, []string{"alice@test.com", "bob@test.com"}, d.Emails())

	ok, err := d.UserExists(ctx, "ALICE@test.com ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.UserExists(ctx, "carol@test.com")
	require.NoError(t, err)
	assert.False(t, ok)

	d.Add("Carol@test.com")
	ok, err = d.UserExists(ctx, "carol@test.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory("alice@test.com").UserExists(ctx, "alice@test.com")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostgres_UserExists(t *testing.T) {
	tests := []struct {
		name    string
		row     mockRow
		want    bool
		wantErr bool
	}{
		{name: "exists", row: mockRow{exists: true}, want: true},
		{name: "absent", row: mockRow{exists: false}, want: false},
		{name: "no rows", row: mockRow{err: pgx.ErrNoRows}, want: false},
		{name: "failure", row: mockRow{err: errors.New("conn closed")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(mockQuerier)
			q.On("QueryRow", mock.Anything, queryUserExists, []any{"alice@test.com"}).Return(tt.row)
			p := &Postgres{conn: q, ins: instrument.NewNoop()}

			got, err := p.UserExists(context.Background(), "alice@test.com")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			q.AssertExpectations(t)
		})
	}
}
