package handlers

import (
	"errors"
	"net/http"
	"strings"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/middleware"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/utils"
)

// DataHandler serves the full per-tenant snapshot.
type DataHandler struct {
	base
}

func NewDataHandler(cfg *config.Config, db database.DatabaseInterface) *DataHandler {
	return &DataHandler{base: newBase(cfg, db)}
}

// emptySnapshot is the answer for an absent or unknown email.
func emptySnapshot() models.Snapshot {
	return models.Snapshot{
		Users:          []models.User{},
		Projects:       []models.Project{},
		Tasks:          []models.Task{},
		ProjectUpdates: []models.ProjectUpdate{},
		Meetings:       []models.Meeting{},
		Invoices:       []models.Invoice{},
		Notifications:  []models.Notification{},
		Reminders:      []models.Reminder{},
		OtherMatters:   []models.OtherMatter{},
	}
}

// GetData GET /data?email=
// The email falls back to the bearer token's identity.
func (h *DataHandler) GetData(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(utils.GetQueryParam(r, "email", ""))
	if email == "" {
		if claims, ok := middleware.GetClaimsFromContext(r.Context()); ok {
			email = claims.Email
		}
	}
	if email == "" {
		utils.WriteSuccessResponse(w, emptySnapshot())
		return
	}

	ctx := r.Context()
	user, err := h.db.GetUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		utils.WriteSuccessResponse(w, emptySnapshot())
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	snap, err := h.db.ReadSnapshot(ctx, user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	snap.AsOf = h.timestamp()
	utils.WriteSuccessResponse(w, snap)
}
