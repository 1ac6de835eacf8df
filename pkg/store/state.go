package store

import "buildsync-backend/pkg/models"

// State is the in-process copy of every collection plus the session.
// Projects own their tasks and updates; everything else is flat.
type State struct {
	CurrentUser         *models.User
	CurrentOrganization *models.Organization

	Organizations []models.Organization
	Users         []models.User
	Projects      []models.Project
	Meetings      []models.Meeting
	Invoices      []models.Invoice
	Reminders     []models.Reminder
	Notifications []models.Notification
	OtherMatters  []models.OtherMatter
}

// emptyState has every collection set to an empty, non-nil slice.
func emptyState() State {
	return State{
		Organizations: []models.Organization{},
		Users:         []models.User{},
		Projects:      []models.Project{},
		Meetings:      []models.Meeting{},
		Invoices:      []models.Invoice{},
		Reminders:     []models.Reminder{},
		Notifications: []models.Notification{},
		OtherMatters:  []models.OtherMatter{},
	}
}

// Clone deep-copies the state so callers never alias store memory.
func (st State) Clone() State {
	out := State{
		Organizations: append([]models.Organization{}, st.Organizations...),
		Users:         append([]models.User{}, st.Users...),
		Projects:      make([]models.Project, len(st.Projects)),
		Meetings:      make([]models.Meeting, len(st.Meetings)),
		Invoices:      append([]models.Invoice{}, st.Invoices...),
		Reminders:     append([]models.Reminder{}, st.Reminders...),
		Notifications: make([]models.Notification, len(st.Notifications)),
		OtherMatters:  append([]models.OtherMatter{}, st.OtherMatters...),
	}
	if st.CurrentUser != nil {
		u := *st.CurrentUser
		out.CurrentUser = &u
	}
	if st.CurrentOrganization != nil {
		o := *st.CurrentOrganization
		out.CurrentOrganization = &o
	}
	for i, p := range st.Projects {
		out.Projects[i] = p.Clone()
	}
	for i, m := range st.Meetings {
		m.Attendees = m.Attendees.OrEmpty().Clone()
		out.Meetings[i] = m
	}
	for i, n := range st.Notifications {
		n.Data = n.Data.Clone()
		out.Notifications[i] = n
	}
	return out
}

// OrganizationID returns the active organization id, or "" when none is set.
func (st *State) OrganizationID() string {
	if st.CurrentOrganization == nil {
		return ""
	}
	return st.CurrentOrganization.ID
}

func upsert[T any](items []T, item T, id func(T) string) []T {
	key := id(item)
	for i := range items {
		if id(items[i]) == key {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func indexOf[T any](items []T, key string, id func(T) string) int {
	for i := range items {
		if id(items[i]) == key {
			return i
		}
	}
	return -1
}

func projectID(p models.Project) string { return p.ID }
func taskID(t models.Task) string { return t.ID }
func commentID(c models.TaskComment) string { return c.ID }
func updateID(u models.ProjectUpdate) string { return u.ID }
func meetingID(m models.Meeting) string { return m.ID }
func invoiceID(i models.Invoice) string { return i.ID }
func reminderID(r models.Reminder) string { return r.ID }
func otherMatterID(m models.OtherMatter) string { return m.ID }
func notificationID(n models.Notification) string { return n.ID }
func userID(u models.User) string { return u.ID }

// Project returns a pointer into the state, or nil.
func (st *State) Project(id string) *models.Project {
	if i := indexOf(st.Projects, id, projectID); i >= 0 {
		return &st.Projects[i]
	}
	return nil
}

// Task returns a pointer to the task and its owning project, or nils.
func (st *State) Task(id string) (*models.Task, *models.Project) {
	for pi := range st.Projects {
		p := &st.Projects[pi]
		if ti := indexOf(p.Tasks, id, taskID); ti >= 0 {
			return &p.Tasks[ti], p
		}
	}
	return nil, nil
}

// UpsertProject replaces the project fields by id, keeping the tasks and
// updates already held, or appends a new project.
func (st *State) UpsertProject(p models.Project) {
	p = p.Clone()
	p.Normalize()
	if cur := st.Project(p.ID); cur != nil {
		p.Tasks = cur.Tasks
		p.Updates = cur.Updates
		*cur = p
		return
	}
	st.Projects = append(st.Projects, p)
}

// RemoveProject deletes the project with its tasks, comments and updates and
// every invoice or meeting that references it.
func (st *State) RemoveProject(id string) {
	st.Projects = remove(st.Projects, func(p models.Project) bool { return p.ID != id })
	st.Invoices = remove(st.Invoices, func(inv models.Invoice) bool { return models.Deref(inv.ProjectID) != id })
	st.Meetings = remove(st.Meetings, func(m models.Meeting) bool { return models.Deref(m.ProjectID) != id })
}

// UpsertTask replaces a task by id or appends it to its project. A task whose
// project is unknown is dropped. Comments already held are kept when the
// incoming task carries none.
func (st *State) UpsertTask(t models.Task) {
	t = t.Clone()
	if cur, owner := st.Task(t.ID); cur != nil {
		if len(t.Comments) == 0 {
			t.Comments = cur.Comments
		}
		t.Normalize()
		if owner.ID == t.ProjectID {
			*cur = t
			return
		}
		owner.Tasks = remove(owner.Tasks, func(x models.Task) bool { return x.ID != t.ID })
	}
	p := st.Project(t.ProjectID)
	if p == nil {
		return
	}
	t.Normalize()
	p.Tasks = append(p.Tasks, t)
}

// UpdateTask applies fn to the task with id; it reports whether it existed.
func (st *State) UpdateTask(id string, fn func(*models.Task)) bool {
	t, _ := st.Task(id)
	if t == nil {
		return false
	}
	fn(t)
	return true
}

func (st *State) RemoveTask(id string) {
	for pi := range st.Projects {
		p := &st.Projects[pi]
		p.Tasks = remove(p.Tasks, func(t models.Task) bool { return t.ID != id })
	}
}

func (st *State) UpsertComment(c models.TaskComment) {
	c.Images = c.Images.OrEmpty().Clone()
	st.UpdateTask(c.TaskID, func(t *models.Task) {
		t.Comments = upsert(t.Comments, c, commentID)
	})
}

func (st *State) RemoveComment(taskID, id string) {
	st.UpdateTask(taskID, func(t *models.Task) {
		t.Comments = remove(t.Comments, func(c models.TaskComment) bool { return c.ID != id })
	})
}

// Comment finds a comment by id across all tasks.
func (st *State) Comment(id string) *models.TaskComment {
	for pi := range st.Projects {
		for ti := range st.Projects[pi].Tasks {
			t := &st.Projects[pi].Tasks[ti]
			if ci := indexOf(t.Comments, id, commentID); ci >= 0 {
				return &t.Comments[ci]
			}
		}
	}
	return nil
}

func (st *State) UpsertProjectUpdate(u models.ProjectUpdate) {
	p := st.Project(u.ProjectID)
	if p == nil {
		return
	}
	if i := indexOf(p.Updates, u.ID, updateID); i >= 0 {
		p.Updates[i] = u
		return
	}
	// newest first
	p.Updates = append([]models.ProjectUpdate{u}, p.Updates...)
}

// ProjectUpdate finds an update by id across all projects.
func (st *State) ProjectUpdate(id string) *models.ProjectUpdate {
	for pi := range st.Projects {
		p := &st.Projects[pi]
		if i := indexOf(p.Updates, id, updateID); i >= 0 {
			return &p.Updates[i]
		}
	}
	return nil
}

func (st *State) RemoveProjectUpdate(id string) {
	for pi := range st.Projects {
		p := &st.Projects[pi]
		if p.Updates != nil {
			p.Updates = remove(p.Updates, func(u models.ProjectUpdate) bool { return u.ID != id })
		}
	}
}

// UpsertMeeting keeps the collection sorted by (date, time).
func (st *State) UpsertMeeting(m models.Meeting) {
	m.Attendees = m.Attendees.OrEmpty().Clone()
	st.Meetings = upsert(st.Meetings, m, meetingID)
	models.SortMeetings(st.Meetings)
}

func (st *State) Meeting(id string) *models.Meeting {
	if i := indexOf(st.Meetings, id, meetingID); i >= 0 {
		return &st.Meetings[i]
	}
	return nil
}

func (st *State) RemoveMeeting(id string) {
	st.Meetings = remove(st.Meetings, func(m models.Meeting) bool { return m.ID != id })
}

func (st *State) UpsertInvoice(inv models.Invoice) {
	st.Invoices = upsert(st.Invoices, inv, invoiceID)
}

func (st *State) Invoice(id string) *models.Invoice {
	if i := indexOf(st.Invoices, id, invoiceID); i >= 0 {
		return &st.Invoices[i]
	}
	return nil
}

func (st *State) RemoveInvoice(id string) {
	st.Invoices = remove(st.Invoices, func(inv models.Invoice) bool { return inv.ID != id })
}

// UpsertReminder keeps the collection sorted by date.
func (st *State) UpsertReminder(r models.Reminder) {
	st.Reminders = upsert(st.Reminders, r, reminderID)
	models.SortReminders(st.Reminders)
}

func (st *State) Reminder(id string) *models.Reminder {
	if i := indexOf(st.Reminders, id, reminderID); i >= 0 {
		return &st.Reminders[i]
	}
	return nil
}

func (st *State) RemoveReminder(id string) {
	st.Reminders = remove(st.Reminders, func(r models.Reminder) bool { return r.ID != id })
}

func (st *State) UpsertOtherMatter(m models.OtherMatter) {
	st.OtherMatters = upsert(st.OtherMatters, m, otherMatterID)
}

func (st *State) OtherMatter(id string) *models.OtherMatter {
	if i := indexOf(st.OtherMatters, id, otherMatterID); i >= 0 {
		return &st.OtherMatters[i]
	}
	return nil
}

func (st *State) RemoveOtherMatter(id string) {
	st.OtherMatters = remove(st.OtherMatters, func(m models.OtherMatter) bool { return m.ID != id })
}

// AddNotification prepends so the feed stays newest first.
func (st *State) AddNotification(n models.Notification) {
	if i := indexOf(st.Notifications, n.ID, notificationID); i >= 0 {
		st.Notifications[i] = n
		return
	}
	st.Notifications = append([]models.Notification{n}, st.Notifications...)
}

func (st *State) Notification(id string) *models.Notification {
	if i := indexOf(st.Notifications, id, notificationID); i >= 0 {
		return &st.Notifications[i]
	}
	return nil
}

// UpsertUser also refreshes the session user when it is the same person.
func (st *State) UpsertUser(u models.User) {
	st.Users = upsert(st.Users, u, userID)
	if st.CurrentUser != nil && st.CurrentUser.ID == u.ID {
		cur := u
		st.CurrentUser = &cur
	}
}

func (st *State) User(id string) *models.User {
	if i := indexOf(st.Users, id, userID); i >= 0 {
		return &st.Users[i]
	}
	return nil
}
