package store

import "buildsync-backend/pkg/models"

// ScopedView is everything the current organization may see. Every
// collection is non-nil.
type ScopedView struct {
	User         *models.User
	Organization *models.Organization

	Users         []models.User
	Projects      []models.Project
	Meetings      []models.Meeting
	Invoices      []models.Invoice
	Reminders     []models.Reminder
	Notifications []models.Notification
	OtherMatters  []models.OtherMatter
}

// Scope filters st down to the current organization. With no organization
// active every collection is empty. This is the only tenant filter in the
// client; nothing else may read collections for display.
func Scope(st *State) ScopedView {
	return ScopeTo(st, st.OrganizationID())
}

// ScopeTo filters st down to orgID. The result shares no memory with st.
func ScopeTo(st *State, orgID string) ScopedView {
	v := ScopedView{
		Users:         filterOrg(st.Users, orgID, func(u models.User) string { return u.OrganizationID }),
		Projects:      []models.Project{},
		Meetings:      filterOrg(st.Meetings, orgID, func(m models.Meeting) string { return m.OrganizationID }),
		Invoices:      filterOrg(st.Invoices, orgID, func(i models.Invoice) string { return i.OrganizationID }),
		Reminders:     filterOrg(st.Reminders, orgID, func(r models.Reminder) string { return r.OrganizationID }),
		Notifications: filterOrg(st.Notifications, orgID, func(n models.Notification) string { return n.OrganizationID }),
		OtherMatters:  filterOrg(st.OtherMatters, orgID, func(m models.OtherMatter) string { return m.OrganizationID }),
	}
	if orgID == "" {
		return v
	}

	if st.CurrentOrganization != nil && st.CurrentOrganization.ID == orgID {
		o := *st.CurrentOrganization
		v.Organization = &o
	}
	if st.CurrentUser != nil && st.CurrentUser.OrganizationID == orgID {
		u := *st.CurrentUser
		v.User = &u
	}

	for _, p := range filterOrg(st.Projects, orgID, func(p models.Project) string { return p.OrganizationID }) {
		p = p.Clone()
		p.Tasks = filterOrg(p.Tasks, orgID, func(t models.Task) string { return t.OrganizationID })
		for i := range p.Tasks {
			p.Tasks[i].Comments = filterOrg(p.Tasks[i].Comments, orgID, func(c models.TaskComment) string { return c.OrganizationID })
		}
		if p.Updates != nil {
			p.Updates = filterOrg(p.Updates, orgID, func(u models.ProjectUpdate) string { return u.OrganizationID })
		}
		v.Projects = append(v.Projects, p)
	}
	for i := range v.Meetings {
		v.Meetings[i].Attendees = v.Meetings[i].Attendees.OrEmpty().Clone()
	}
	for i := range v.Notifications {
		v.Notifications[i].Data = v.Notifications[i].Data.Clone()
	}
	return v
}

// filterOrg copies the items belonging to orgID into a new, non-nil slice.
// An empty orgID matches nothing.
func filterOrg[T any](items []T, orgID string, org func(T) string) []T {
	out := []T{}
	if orgID == "" {
		return out
	}
	for _, it := range items {
		if org(it) == orgID {
			out = append(out, it)
		}
	}
	return out
}

// Tasks flattens the view's tasks in project order.
func (v ScopedView) Tasks() []models.Task {
	out := []models.Task{}
	for _, p := range v.Projects {
		out = append(out, p.Tasks...)
	}
	return out
}

// Project looks a project up by id inside the view.
func (v ScopedView) Project(id string) (models.Project, bool) {
	for _, p := range v.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

// Task looks a task up by id inside the view.
func (v ScopedView) Task(id string) (models.Task, bool) {
	for _, p := range v.Projects {
		for _, t := range p.Tasks {
			if t.ID == id {
				return t, true
			}
		}
	}
	return models.Task{}, false
}

// UnreadCount counts the current user's unread notifications.
func (v ScopedView) UnreadCount() int {
	if v.User == nil {
		return 0
	}
	n := 0
	for _, x := range v.Notifications {
		if x.UserID == v.User.ID && !x.Read {
			n++
		}
	}
	return n
}
