package database

import (
	"context"
	"errors"
	"io"
	"testing"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*SQLDatabase, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLDatabase(sqlx.NewDb(db, "postgres"), log.New(io.Discard)), mock
}

func TestDeleteProjectRollsBackOnFailure(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM task_comments").
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM tasks").
		WithArgs("p-1").
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	err := d.DeleteProject(context.Background(), "p-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProjectMissingRollsBack(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectBegin()
	for _, step := range []string{"task_comments", "tasks", "project_updates", "invoices", "meetings"} {
		mock.ExpectExec("DELETE FROM " + step).WithArgs("p-1").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("DELETE FROM projects").WithArgs("p-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := d.DeleteProject(context.Background(), "p-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProjectCommitsInDependencyOrder(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectBegin()
	for _, step := range []string{"task_comments", "tasks", "project_updates", "invoices", "meetings", "projects"} {
		mock.ExpectExec("DELETE FROM " + step).WithArgs("p-1").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, d.DeleteProject(context.Background(), "p-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func missingAttachmentColumn() error {
	return &pq.Error{Code: pgUndefinedColumn, Message: `column "attachment_url" of relation "invoices" does not exist`}
}

func TestInvoiceDriftRetryExhaustion(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO invoices").WillReturnError(missingAttachmentColumn())
	mock.ExpectExec("ALTER TABLE invoices ADD COLUMN attachment_url").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO invoices").WillReturnError(missingAttachmentColumn())

	inv := &models.Invoice{ID: "i-1", OrganizationID: "org-1", Type: models.InvoiceSent, Amount: 10}
	err := d.CreateInvoice(context.Background(), inv)
	assert.ErrorIs(t, err, apperr.ErrSchemaDrift)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceDriftRetrySucceeds(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("UPDATE invoices").WillReturnError(missingAttachmentColumn())
	mock.ExpectExec("ALTER TABLE invoices ADD COLUMN attachment_url").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE invoices").WillReturnResult(sqlmock.NewResult(0, 1))

	inv := &models.Invoice{ID: "i-1", OrganizationID: "org-1", Type: models.InvoiceReceived, Amount: 10, Status: models.InvoiceOverdue}
	require.NoError(t, d.UpdateInvoice(context.Background(), inv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceOtherFailuresAreNotRetried(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO invoices").WillReturnError(errors.New("disk full"))

	inv := &models.Invoice{ID: "i-1", OrganizationID: "org-1", Type: models.InvoiceSent}
	err := d.CreateInvoice(context.Background(), inv)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrSchemaDrift)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingColumnDetection(t *testing.T) {
	assert.True(t, isMissingColumn(missingAttachmentColumn(), "attachment_url"))
	assert.True(t, isMissingColumn(errors.New("table invoices has no column named attachment_url"), "attachment_url"))
	assert.True(t, isMissingColumn(errors.New("no such column: attachment_url"), "attachment_url"))
	assert.False(t, isMissingColumn(errors.New("no such column: amount"), "attachment_url"))
	assert.False(t, isMissingColumn(&pq.Error{Code: pgUniqueViolation, Message: "attachment_url"}, "attachment_url"))
	assert.False(t, isMissingColumn(nil, "attachment_url"))
}
