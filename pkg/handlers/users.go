package handlers

import (
	"net/http"
	"strings"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/middleware"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/utils"
)

// UsersHandler 用户与通知
type UsersHandler struct {
	base
}

func NewUsersHandler(cfg *config.Config, db database.DatabaseInterface) *UsersHandler {
	return &UsersHandler{base: newBase(cfg, db)}
}

// UpdateUser POST /user/update
// The organization, password and super-admin flag never change here. When
// the caller is identified by a bearer token, only an admin may change the
// admin flag.
func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := decode[models.User](&h.base, w, r)
	if !ok {
		return
	}
	u.Name = strings.TrimSpace(u.Name)
	if !h.require(w, r, "id", u.ID, "name", u.Name, "email", strings.TrimSpace(u.Email)) {
		return
	}

	ctx := r.Context()
	existing, err := h.db.GetUserByID(ctx, u.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := stamp("user", u.ID, &u.OrganizationID, existing.OrganizationID); err != nil {
		h.fail(w, r, err)
		return
	}
	if u.IsAdmin != existing.IsAdmin {
		if claims, ok := middleware.GetClaimsFromContext(ctx); ok {
			actor, err := h.db.GetUserByID(ctx, claims.UserID)
			if err != nil {
				h.fail(w, r, err)
				return
			}
			if actor.OrganizationID != existing.OrganizationID || !actor.CanModerate() {
				h.fail(w, r, apperr.Forbidden("only an admin may change the admin flag of %s", u.ID))
				return
			}
		}
	}
	u.IsSuperAdmin = existing.IsSuperAdmin

	if err := h.db.UpdateUser(ctx, u); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, u.ID)
}

// MarkNotificationRead POST /notification/read
func (h *UsersHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.IDRequest](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", req.ID) {
		return
	}
	if err := h.db.MarkNotificationRead(r.Context(), req.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, req.ID)
}
