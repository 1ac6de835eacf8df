package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/utils"

	"github.com/google/uuid"
)

// base is shared by every handler family.
type base struct {
	config *config.Config
	db     database.DatabaseInterface
	now    func() time.Time
	newID  func() string
}

func newBase(cfg *config.Config, db database.DatabaseInterface) base {
	return base{
		config: cfg,
		db:     db,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

func (b *base) timestamp() string {
	return models.Timestamp(b.now())
}

// idOr keeps a caller supplied id so retried creates stay at-most-once.
func (b *base) idOr(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return b.newID()
}

func (b *base) fail(w http.ResponseWriter, r *http.Request, err error) {
	utils.WriteError(w, r, err, b.config.Debug)
}

// decode parses the JSON body into a fresh T, answering 400 itself on failure.
func decode[T any](b *base, w http.ResponseWriter, r *http.Request) (*T, bool) {
	v := new(T)
	if err := utils.ParseJSONBody(r, v); err != nil {
		b.fail(w, r, err)
		return nil, false
	}
	return v, true
}

// require answers 400 naming the first empty field.
func (b *base) require(w http.ResponseWriter, r *http.Request, pairs ...string) bool {
	if err := models.RequireFields(pairs...); err != nil {
		b.fail(w, r, err)
		return false
	}
	return true
}

// SetClock replaces the time source of a handler family; used by tests.
func (b *base) SetClock(now func() time.Time) {
	b.now = now
}

// stamp fills an empty organizationId from the owning row. A different
// non-empty value would move the row across tenants and is refused.
func stamp(kind, id string, orgID *string, owner string) error {
	if *orgID == "" {
		*orgID = owner
		return nil
	}
	if *orgID != owner {
		return apperr.TenantBoundary(kind, id, owner)
	}
	return nil
}

func errInvalidStatus(kind, status string) error {
	return apperr.Validation("unknown %s status %q", kind, status)
}

// deleteByID handles the plain DELETE {id} routes.
func (b *base) deleteByID(w http.ResponseWriter, r *http.Request, del func(context.Context, string) error) {
	req, ok := decode[models.IDRequest](b, w, r)
	if !ok {
		return
	}
	if !b.require(w, r, "id", req.ID) {
		return
	}
	if err := del(r.Context(), req.ID); err != nil {
		b.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, req.ID)
}
