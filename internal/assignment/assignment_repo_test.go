package assignment_test

import (
	"context"
	"testing"

	"go-payroll/internal/assignment"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gdb, mock
}

func TestRepository_TemplateExists_ReadsRowForShare(t *testing.T) {
	gdb, mock := newGormMock(t)
	repo := assignment.NewRepository(gdb)
	template := uuid.New()

	mock.ExpectQuery(`SELECT id FROM "payment_templates" WHERE .*deleted_at IS NULL.* FOR SHARE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(template.String()))

	ok, err := repo.TemplateExists(context.Background(), companyID, template)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TemplateExists_MissingRow(t *testing.T) {
	gdb, mock := newGormMock(t)
	repo := assignment.NewRepository(gdb)

	mock.ExpectQuery(`FROM "payment_templates" .* FOR SHARE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ok, err := repo.TemplateExists(context.Background(), companyID, uuid.New())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
