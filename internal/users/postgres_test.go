package users

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery = `INSERT INTO users \(username, password\)`
	listQuery   = `SELECT user_id, username FROM users ORDER BY user_id`
	findByQuery = `SELECT user_id, username, password\s+FROM users\s+WHERE username = \$1`
)

func TestPostgresRepository_Add(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      User
		wantErr   error
		errMsg    string
	}{
		{
			name: "returns created record",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(insertQuery).
					WithArgs("sue", "$2a$08$hash").
					WillReturnRows(pgxmock.NewRows([]string{"user_id", "username"}).AddRow(int64(2), "sue"))
			},
			want: User{ID: 2, Username: "sue"},
		},
		{
			name: "unique violation maps to ErrDuplicateUsername",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(insertQuery).
					WithArgs("sue", "$2a$08$hash").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"})
			},
			wantErr: ErrDuplicateUsername,
		},
		{
			name: "other database errors are wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(insertQuery).
					WithArgs("sue", "$2a$08$hash").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewPostgresRepository(mock)
			got, err := repo.Add(context.Background(), User{Username: "sue", Password: "$2a$08$hash"})

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.NotErrorIs(t, err, ErrDuplicateUsername)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_Find(t *testing.T) {
	t.Run("returns users in id order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(listQuery).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username"}).
				AddRow(int64(1), "bob").
				AddRow(int64(2), "sue"))

		got, err := NewPostgresRepository(mock).Find(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []User{{ID: 1, Username: "bob"}, {ID: 2, Username: "sue"}}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(listQuery).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username"}))

		got, err := NewPostgresRepository(mock).Find(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("query error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(listQuery).WillReturnError(errors.New("timeout"))

		_, err = NewPostgresRepository(mock).Find(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}

func TestPostgresRepository_FindBy(t *testing.T) {
	t.Run("returns matching user with hash", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(findByQuery).
			WithArgs("sue").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "password"}).
				AddRow(int64(2), "sue", "$2a$08$hash"))

		got, err := NewPostgresRepository(mock).FindBy(context.Background(), Filter{Username: "sue"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, User{ID: 2, Username: "sue", Password: "$2a$08$hash"}, got[0])
	})

	t.Run("no match", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(findByQuery).
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "password"}))

		got, err := NewPostgresRepository(mock).FindBy(context.Background(), Filter{Username: "ghost"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
