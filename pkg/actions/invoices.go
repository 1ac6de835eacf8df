package actions

import (
	"context"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/store"
)

func invoiceID(i models.Invoice) string { return i.ID }

func (a *Actions) AddInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	s, err := a.begin("addInvoice")
	if err != nil {
		return inv, err
	}
	if err := inv.Validate(); err != nil {
		return inv, err
	}
	if pid := models.Deref(inv.ProjectID); pid != "" {
		if _, ok := s.view.Project(pid); !ok {
			return inv, apperr.NotFound("project", pid)
		}
	}
	inv.ID = a.idOr(inv.ID)
	inv.OrganizationID = s.org.ID
	if inv.Date == "" {
		inv.Date = a.timestamp()
	}

	if err := a.gw.CreateInvoice(ctx, inv); err != nil {
		return inv, err
	}
	a.apply("addInvoice", func(st *store.State) { st.UpsertInvoice(inv) })
	return inv, nil
}

// UpdateInvoice replaces the invoice by id.
func (a *Actions) UpdateInvoice(ctx context.Context, inv models.Invoice) error {
	s, err := a.begin("updateInvoice")
	if err != nil {
		return err
	}
	if _, ok := find(s.view.Invoices, inv.ID, invoiceID); !ok {
		return apperr.NotFound("invoice", inv.ID)
	}
	if err := inv.Validate(); err != nil {
		return err
	}
	inv.OrganizationID = s.org.ID

	if err := a.gw.UpdateInvoice(ctx, inv); err != nil {
		return err
	}
	a.apply("updateInvoice", func(st *store.State) { st.UpsertInvoice(inv) })
	return nil
}

// UpdateInvoiceStatus accepts any transition between known statuses.
func (a *Actions) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	s, err := a.begin("updateInvoiceStatus")
	if err != nil {
		return err
	}
	inv, ok := find(s.view.Invoices, id, invoiceID)
	if !ok {
		return apperr.NotFound("invoice", id)
	}
	if !status.Valid() {
		return apperr.Validation("unknown invoice status %q", status)
	}
	inv.Status = status

	if err := a.gw.UpdateInvoice(ctx, inv); err != nil {
		return err
	}
	a.apply("updateInvoiceStatus", func(st *store.State) { st.UpsertInvoice(inv) })
	return nil
}

func (a *Actions) DeleteInvoice(ctx context.Context, id string) error {
	s, err := a.begin("deleteInvoice")
	if err != nil {
		return err
	}
	if _, ok := find(s.view.Invoices, id, invoiceID); !ok {
		return apperr.NotFound("invoice", id)
	}
	if err := a.gw.DeleteInvoice(ctx, id); err != nil {
		return err
	}
	a.apply("deleteInvoice", func(st *store.State) { st.RemoveInvoice(id) })
	return nil
}
