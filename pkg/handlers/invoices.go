package handlers

import (
	"net/http"

	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/utils"
)

// InvoicesHandler 发票
type InvoicesHandler struct {
	base
}

func NewInvoicesHandler(cfg *config.Config, db database.DatabaseInterface) *InvoicesHandler {
	return &InvoicesHandler{base: newBase(cfg, db)}
}

// decodeInvoice reads and checks an invoice body. A referenced project must
// belong to the invoice's organization.
func (h *InvoicesHandler) decodeInvoice(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	inv, ok := decode[models.Invoice](&h.base, w, r)
	if !ok {
		return nil, false
	}
	if !h.require(w, r, "organizationId", inv.OrganizationID) {
		return nil, false
	}
	if err := inv.Validate(); err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	if pid := models.Deref(inv.ProjectID); pid != "" {
		project, err := h.db.GetProject(r.Context(), pid)
		if err != nil {
			h.fail(w, r, err)
			return nil, false
		}
		if err := stamp("invoice", inv.ID, &inv.OrganizationID, project.OrganizationID); err != nil {
			h.fail(w, r, err)
			return nil, false
		}
	}
	if inv.Date == "" {
		inv.Date = h.timestamp()
	}
	return inv, true
}

// CreateInvoice POST /invoice
func (h *InvoicesHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.decodeInvoice(w, r)
	if !ok {
		return
	}
	inv.ID = h.idOr(inv.ID)
	if err := h.db.CreateInvoice(r.Context(), inv); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, inv.ID)
}

// UpdateInvoice POST /invoice/update
func (h *InvoicesHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.decodeInvoice(w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", inv.ID) {
		return
	}
	if err := h.db.UpdateInvoice(r.Context(), inv); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, inv.ID)
}

// DeleteInvoice DELETE /invoice
func (h *InvoicesHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.db.DeleteInvoice)
}
