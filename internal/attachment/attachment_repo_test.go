package attachment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	attachmenterrors "github.com/jackson951/flexileave-app-sub001/internal/attachment/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (attachment.Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	return attachment.NewRepository(gdb), mock
}

func TestRepository_Attach(t *testing.T) {
	ctx := context.Background()
	leaveID := uuid.New()
	a, b := uuid.New(), uuid.New()

	t.Run("all rows claimed", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`UPDATE "files" SET "leave_id"=\$1 WHERE id IN \(\$2,\$3\) AND \(leave_id IS NULL OR leave_id = \$4\)`).
			WithArgs(leaveID, a, b, leaveID).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.Attach(ctx, leaveID, []uuid.UUID{a, b, a})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a file owned by another leave", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`UPDATE "files" SET "leave_id"=`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Attach(ctx, leaveID, []uuid.UUID{a, b})

		assert.True(t, errors.Is(err, attachmenterrors.ErrFileAttachedElsewhere))
	})

	t.Run("nothing to attach", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		assert.NoError(t, repo.Attach(ctx, leaveID, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Detach(t *testing.T) {
	ctx := context.Background()
	leaveID := uuid.New()
	a := uuid.New()

	t.Run("scoped to the leave", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`UPDATE "files" SET "leave_id"=\$1 WHERE id IN \(\$2\) AND leave_id = \$3`).
			WithArgs(nil, a, leaveID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Detach(ctx, leaveID, []uuid.UUID{a}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("file on another leave", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`UPDATE "files" SET "leave_id"=`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Detach(ctx, leaveID, []uuid.UUID{a})
		assert.True(t, errors.Is(err, attachmenterrors.ErrFileNotAttached))
	})
}

func TestRepository_ListOrphaned(t *testing.T) {
	repo, mock := setupRepoTest(t)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "files" WHERE leave_id IS NULL AND created_at < \$1 ORDER BY created_at ASC LIMIT \$2`).
		WithArgs(cutoff, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "storage_key"}).AddRow(id, "2023/12/x.pdf"))

	files, err := repo.ListOrphaned(context.Background(), cutoff, 50)

	assert.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "2023/12/x.pdf", files[0].StorageKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteIfOrphaned(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("unattached row is removed", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`DELETE FROM "files" WHERE id = \$1 AND leave_id IS NULL`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		removed, err := repo.DeleteIfOrphaned(ctx, id)

		assert.NoError(t, err)
		assert.True(t, removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row attached in the meantime is kept", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`DELETE FROM "files" WHERE id = \$1 AND leave_id IS NULL`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		removed, err := repo.DeleteIfOrphaned(ctx, id)

		assert.NoError(t, err)
		assert.False(t, removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`DELETE FROM "files"`).WillReturnError(errors.New("db down"))

		removed, err := repo.DeleteIfOrphaned(ctx, id)

		assert.EqualError(t, err, "db down")
		assert.False(t, removed)
	})
}

func TestDistinct(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, attachment.Distinct([]uuid.UUID{a, uuid.Nil, b, a}))
}
