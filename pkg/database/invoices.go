package database

import (
	"context"
	"fmt"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/jmoiron/sqlx"
)

const invoiceColumns = `id, organization_id, type, amount, client_name, due_date, status, date,
	description, project_id, attachment_url`

// withInvoiceAttachmentColumn runs fn and, if it fails because the
// attachment_url column is missing, adds the column and runs fn exactly once
// more. A second failure is fatal.
func (d *SQLDatabase) withInvoiceAttachmentColumn(ctx context.Context, fn func() error) error {
	err := fn()
	if !isMissingColumn(err, "attachment_url") {
		return err
	}

	d.logger.Warn("invoices table is missing attachment_url, patching schema", "err", err)
	if perr := d.patchMissingColumn(ctx, "invoices", "attachment_url", "TEXT"); perr != nil {
		return apperr.SchemaDrift("invoices", "attachment_url", perr)
	}
	err = fn()
	if isMissingColumn(err, "attachment_url") {
		return apperr.SchemaDrift("invoices", "attachment_url", err)
	}
	return err
}

func (d *SQLDatabase) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	return d.withInvoiceAttachmentColumn(ctx, func() error {
		_, err := d.namedExec(ctx, d.db, `
			INSERT INTO invoices (`+invoiceColumns+`)
			VALUES (:id, :organization_id, :type, :amount, :client_name, :due_date, :status, :date,
				:description, :project_id, :attachment_url)`, inv)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
}

func (d *SQLDatabase) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	return d.withInvoiceAttachmentColumn(ctx, func() error {
		res, err := d.namedExec(ctx, d.db, `
			UPDATE invoices
			SET type = :type, amount = :amount, client_name = :client_name, due_date = :due_date,
				status = :status, date = :date, description = :description,
				project_id = :project_id, attachment_url = :attachment_url
			WHERE id = :id AND organization_id = :organization_id`, inv)
		if err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return expectOne(res, "invoice", inv.ID)
	})
}

func (d *SQLDatabase) ListInvoices(ctx context.Context, orgID string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := d.withInvoiceAttachmentColumn(ctx, func() (err error) {
		invoices, err = d.listInvoices(ctx, d.db, orgID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (d *SQLDatabase) listInvoices(ctx context.Context, q sqlx.ExtContext, orgID string) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	if err := d.selectAll(ctx, q, &invoices,
		`SELECT `+invoiceColumns+` FROM invoices WHERE organization_id = ? ORDER BY date DESC, id`, orgID); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (d *SQLDatabase) DeleteInvoice(ctx context.Context, id string) error {
	res, err := d.exec(ctx, d.db, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return expectOne(res, "invoice", id)
}
