package actions

import (
	"context"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/store"
)

// UpdateUser replaces a team member's profile. Admin flags can only be
// changed by an admin.
func (a *Actions) UpdateUser(ctx context.Context, u models.User) error {
	s, err := a.begin("updateUser")
	if err != nil {
		return err
	}
	cur, ok := find(s.view.Users, u.ID, func(u models.User) string { return u.ID })
	if !ok {
		return apperr.NotFound("user", u.ID)
	}
	if err := models.RequireFields("name", u.Name, "email", u.Email); err != nil {
		return err
	}
	if u.IsAdmin != cur.IsAdmin && !s.user.CanModerate() {
		return apperr.Forbidden("only an admin may change admin rights")
	}
	u.OrganizationID = s.org.ID
	u.IsSuperAdmin = cur.IsSuperAdmin

	if err := a.gw.UpdateUser(ctx, u); err != nil {
		return err
	}
	a.apply("updateUser", func(st *store.State) { st.UpsertUser(u) })
	return nil
}

// MarkNotificationRead marks one of the current user's notifications read.
func (a *Actions) MarkNotificationRead(ctx context.Context, id string) error {
	s, err := a.begin("markNotificationRead")
	if err != nil {
		return err
	}
	n, ok := find(s.view.Notifications, id, func(n models.Notification) string { return n.ID })
	if !ok || n.UserID != s.user.ID {
		return apperr.NotFound("notification", id)
	}
	if n.Read {
		return nil
	}
	if err := a.gw.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	a.apply("markNotificationRead", func(st *store.State) {
		if cur := st.Notification(id); cur != nil {
			cur.Read = true
		}
	})
	return nil
}
