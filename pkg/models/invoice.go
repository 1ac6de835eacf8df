package models

// InvoiceType distinguishes money owed to the organization from money it owes.
type InvoiceType string

const (
	InvoiceSent     InvoiceType = "sent"
	InvoiceReceived InvoiceType = "received"
)

// InvoiceStatus transitions are unconstrained.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

type Invoice struct {
	ID             string        `json:"id" db:"id"`
	OrganizationID string        `json:"organizationId" db:"organization_id"`
	Type           InvoiceType   `json:"type" db:"type"`
	Amount         float64       `json:"amount" db:"amount"`
	ClientName     string        `json:"clientName" db:"client_name"`
	DueDate        string        `json:"dueDate" db:"due_date"`
	Status         InvoiceStatus `json:"status" db:"status"`
	Date           string        `json:"date" db:"date"`
	Description    string        `json:"description" db:"description"`
	ProjectID      *string       `json:"projectId,omitempty" db:"project_id"`
	AttachmentURL  *string       `json:"attachmentUrl,omitempty" db:"attachment_url"`
}

// Validate checks the fields every stored invoice must carry.
func (inv *Invoice) Validate() error {
	if inv.Type != InvoiceSent && inv.Type != InvoiceReceived {
		return fieldError("type", "must be sent or received")
	}
	if inv.Amount < 0 {
		return fieldError("amount", "must not be negative")
	}
	if inv.Status == "" {
		inv.Status = InvoicePending
	}
	if !inv.Status.Valid() {
		return fieldError("status", "must be pending, paid or overdue")
	}
	return nil
}
