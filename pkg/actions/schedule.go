package actions

import (
	"context"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/store"
)

func meetingID(m models.Meeting) string { return m.ID }
func reminderID(r models.Reminder) string { return r.ID }
func otherMatterID(m models.OtherMatter) string { return m.ID }

// 会议

func (a *Actions) AddMeeting(ctx context.Context, m models.Meeting) (models.Meeting, error) {
	s, err := a.begin("addMeeting")
	if err != nil {
		return m, err
	}
	if err := models.RequireFields("title", m.Title, "date", m.Date); err != nil {
		return m, err
	}
	if pid := models.Deref(m.ProjectID); pid != "" {
		if _, ok := s.view.Project(pid); !ok {
			return m, apperr.NotFound("project", pid)
		}
	}
	m.ID = a.idOr(m.ID)
	m.OrganizationID = s.org.ID
	m.Attendees = m.Attendees.OrEmpty().Clone()

	if err := a.gw.CreateMeeting(ctx, m); err != nil {
		return m, err
	}
	a.apply("addMeeting", func(st *store.State) { st.UpsertMeeting(m) })
	return m, nil
}

func (a *Actions) UpdateMeeting(ctx context.Context, m models.Meeting) error {
	s, err := a.begin("updateMeeting")
	if err != nil {
		return err
	}
	if _, ok := find(s.view.Meetings, m.ID, meetingID); !ok {
		return apperr.NotFound("meeting", m.ID)
	}
	m.OrganizationID = s.org.ID
	m.Attendees = m.Attendees.OrEmpty().Clone()

	if err := a.gw.UpdateMeeting(ctx, m); err != nil {
		return err
	}
	a.apply("updateMeeting", func(st *store.State) { st.UpsertMeeting(m) })
	return nil
}

// ToggleMeeting flips completion. Completing records the current user;
// reopening clears it.
func (a *Actions) ToggleMeeting(ctx context.Context, id string) error {
	s, err := a.begin("toggleMeeting")
	if err != nil {
		return err
	}
	m, ok := find(s.view.Meetings, id, meetingID)
	if !ok {
		return apperr.NotFound("meeting", id)
	}
	req := models.MeetingCompletionRequest{ID: id, Completed: !m.Completed}
	if req.Completed {
		req.CompletedBy = models.StrPtr(s.user.ID)
	}
	if err := a.gw.CompleteMeeting(ctx, req); err != nil {
		return err
	}
	a.apply("toggleMeeting", func(st *store.State) {
		if cur := st.Meeting(id); cur != nil {
			cur.Completed = req.Completed
			cur.CompletedBy = req.CompletedBy
		}
	})
	return nil
}

func (a *Actions) DeleteMeeting(ctx context.Context, id string) error {
	s, err := a.begin("deleteMeeting")
	if err != nil {
		return err
	}
	if _, ok := find(s.view.Meetings, id, meetingID); !ok {
		return apperr.NotFound("meeting", id)
	}
	if err := a.gw.DeleteMeeting(ctx, id); err != nil {
		return err
	}
	a.apply("deleteMeeting", func(st *store.State) { st.RemoveMeeting(id) })
	return nil
}

// 提醒

func (a *Actions) AddReminder(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	s, err := a.begin("addReminder")
	if err != nil {
		return r, err
	}
	if err := models.RequireFields("title", r.Title, "date", r.Date); err != nil {
		return r, err
	}
	r.ID = a.idOr(r.ID)
	r.OrganizationID = s.org.ID

	if err := a.gw.CreateReminder(ctx, r); err != nil {
		return r, err
	}
	a.apply("addReminder", func(st *store.State) { st.UpsertReminder(r) })
	return r, nil
}

// UpdateReminder replaces the reminder by id.
func (a *Actions) UpdateReminder(ctx context.Context, r models.Reminder) error {
	s, err := a.begin("updateReminder")
	if err != nil {
		return err
	}
	if _, ok := find(s.view.Reminders, r.ID, reminderID); !ok {
		return apperr.NotFound("reminder", r.ID)
	}
	r.OrganizationID = s.org.ID

	if err := a.gw.UpdateReminder(ctx, r); err != nil {
		return err
	}
	a.apply("updateReminder", func(st *store.State) { st.UpsertReminder(r) })
	return nil
}

// ToggleReminder flips completed and leaves completedBy as it was.
func (a *Actions) ToggleReminder(ctx context.Context, id string) error {
	s, err := a.begin("toggleReminder")
	if err != nil {
		return err
	}
	r, ok := find(s.view.Reminders, id, reminderID)
	if !ok {
		return apperr.NotFound("reminder", id)
	}
	r.Completed = !r.Completed

	if err := a.gw.UpdateReminder(ctx, r); err != nil {
		return err
	}
	a.apply("toggleReminder", func(st *store.State) { st.UpsertReminder(r) })
	return nil
}

func (a *Actions) DeleteReminder(ctx context.Context, id string) error {
	s, err := a.begin("deleteReminder")
	if err != nil {
		return err
	}
	if _, ok := find(s.view.Reminders, id, reminderID); !ok {
		return apperr.NotFound("reminder", id)
	}
	if err := a.gw.DeleteReminder(ctx, id); err != nil {
		return err
	}
	a.apply("deleteReminder", func(st *store.State) { st.RemoveReminder(id) })
	return nil
}

// 其他事项

func (a *Actions) AddOtherMatter(ctx context.Context, m models.OtherMatter) (models.OtherMatter, error) {
	s, err := a.begin("addOtherMatter")
	if err != nil {
		return m, err
	}
	if err := models.RequireFields("title", m.Title); err != nil {
		return m, err
	}
	m.ID = a.idOr(m.ID)
	m.OrganizationID = s.org.ID
	if m.Date == "" {
		m.Date = a.timestamp()
	}

	if err := a.gw.CreateOtherMatter(ctx, m); err != nil {
		return m, err
	}
	a.apply("addOtherMatter", func(st *store.State) { st.UpsertOtherMatter(m) })
	return m, nil
}

func (a *Actions) UpdateOtherMatter(ctx context.Context, m models.OtherMatter) error {
	s, err := a.begin("updateOtherMatter")
	if err != nil {
		return err
	}
	if _, ok := find(s.view.OtherMatters, m.ID, otherMatterID); !ok {
		return apperr.NotFound("other matter", m.ID)
	}
	m.OrganizationID = s.org.ID

	if err := a.gw.UpdateOtherMatter(ctx, m); err != nil {
		return err
	}
	a.apply("updateOtherMatter", func(st *store.State) { st.UpsertOtherMatter(m) })
	return nil
}

func (a *Actions) DeleteOtherMatter(ctx context.Context, id string) error {
	s, err := a.begin("deleteOtherMatter")
	if err != nil {
		return err
	}
	if _, ok := find(s.view.OtherMatters, id, otherMatterID); !ok {
		return apperr.NotFound("other matter", id)
	}
	if err := a.gw.DeleteOtherMatter(ctx, id); err != nil {
		return err
	}
	a.apply("deleteOtherMatter", func(st *store.State) { st.RemoveOtherMatter(id) })
	return nil
}
