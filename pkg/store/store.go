// Package store holds the client-side copy of a tenant's data. Reads go
// through Scope; writes go through Apply so they can be replayed on top of a
// snapshot that was fetched while they were in flight.
package store

import (
	"sync"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"
)

// Mutation edits the state in place. Mutations must be idempotent upserts or
// deletes keyed by id, since one may run twice: once when it is applied and
// again when a refresh replays it.
type Mutation func(*State)

type journalEntry struct {
	seq  uint64
	name string
	fn   Mutation
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	state   State
	seq     uint64
	journal []journalEntry
	asOf    string
}

// New returns an empty, logged-out store.
func New() *Store {
	return &Store{state: emptyState()}
}

// Load replaces every collection with the snapshot and clears the journal.
func (s *Store) Load(snap *models.Snapshot) error {
	next, err := build(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
	s.journal = nil
	s.asOf = asOf(snap)
	return nil
}

// LoadSince replaces every collection with the snapshot, then re-applies the
// journaled mutations with a sequence number above since. It returns how many
// were replayed. On error the current state is left untouched.
func (s *Store) LoadSince(snap *models.Snapshot, since uint64) (int, error) {
	next, err := build(snap)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.journal[:0]
	for _, e := range s.journal {
		if e.seq <= since {
			continue
		}
		if next.CurrentUser != nil {
			e.fn(&next)
		}
		kept = append(kept, e)
	}
	s.state = next
	s.journal = kept
	s.asOf = asOf(snap)
	return len(kept), nil
}

// Apply runs fn against the state and journals it. It returns the sequence
// number assigned to the mutation.
func (s *Store) Apply(name string, fn Mutation) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	fn(&s.state)
	s.journal = append(s.journal, journalEntry{seq: s.seq, name: name, fn: fn})
	return s.seq
}

// Seq returns the sequence number of the last applied mutation.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Pending lists the names of journaled mutations, oldest first.
func (s *Store) Pending() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.journal))
	for i, e := range s.journal {
		names[i] = e.name
	}
	return names
}

// AsOf returns the server timestamp of the last loaded snapshot.
func (s *Store) AsOf() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.asOf
}

// Reset logs out: every collection is emptied and the journal dropped.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = emptyState()
	s.journal = nil
	s.asOf = ""
}

// State returns a deep copy of the whole store, unscoped.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// View returns the scoped view of the current state.
func (s *Store) View() ScopedView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Scope(&s.state)
}

// Read runs fn under the read lock against the live state. fn must not
// retain or modify anything it is handed.
func (s *Store) Read(fn func(*State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// Session returns copies of the current user and organization.
func (s *Store) Session() (*models.User, *models.Organization) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var u *models.User
	var o *models.Organization
	if s.state.CurrentUser != nil {
		cu := *s.state.CurrentUser
		u = &cu
	}
	if s.state.CurrentOrganization != nil {
		co := *s.state.CurrentOrganization
		o = &co
	}
	return u, o
}

func asOf(snap *models.Snapshot) string {
	if snap == nil {
		return ""
	}
	return snap.AsOf
}

func malformed(format string, args ...any) error {
	return apperr.Validation("malformed snapshot: "+format, args...)
}

// build turns a snapshot into a fresh State without touching the store. A
// snapshot without a user is a logged-out state.
func build(snap *models.Snapshot) (State, error) {
	st := emptyState()
	if snap == nil || snap.User == nil {
		return st, nil
	}

	if snap.User.ID == "" {
		return st, malformed("user without id")
	}
	u := *snap.User
	st.CurrentUser = &u
	if snap.Organization != nil {
		if snap.Organization.ID == "" {
			return st, malformed("organization without id")
		}
		o := *snap.Organization
		st.CurrentOrganization = &o
		st.Organizations = append(st.Organizations, o)
	}

	for _, u := range snap.Users {
		if err := check("user", u.ID, u.OrganizationID); err != nil {
			return st, err
		}
		st.Users = append(st.Users, u)
	}

	projects := make(map[string]int, len(snap.Projects))
	for _, p := range snap.Projects {
		if err := check("project", p.ID, p.OrganizationID); err != nil {
			return st, err
		}
		p = p.Clone()
		p.Tasks = []models.Task{}
		p.Updates = nil
		p.Normalize()
		projects[p.ID] = len(st.Projects)
		st.Projects = append(st.Projects, p)
	}

	for _, t := range snap.Tasks {
		if err := check("task", t.ID, t.OrganizationID); err != nil {
			return st, err
		}
		for _, c := range t.Comments {
			if c.ID == "" {
				return st, malformed("comment without id on task %q", t.ID)
			}
		}
		i, ok := projects[t.ProjectID]
		if !ok {
			// tasks of a project deleted mid-read are dropped
			continue
		}
		t = t.Clone()
		t.Normalize()
		st.Projects[i].Tasks = append(st.Projects[i].Tasks, t)
	}

	for _, u := range snap.ProjectUpdates {
		if err := check("project update", u.ID, u.OrganizationID); err != nil {
			return st, err
		}
		i, ok := projects[u.ProjectID]
		if !ok {
			// updates of a project deleted mid-read are dropped
			continue
		}
		st.Projects[i].Updates = append(st.Projects[i].Updates, u)
	}

	for _, m := range snap.Meetings {
		if err := check("meeting", m.ID, m.OrganizationID); err != nil {
			return st, err
		}
		m.Attendees = m.Attendees.OrEmpty().Clone()
		st.Meetings = append(st.Meetings, m)
	}
	models.SortMeetings(st.Meetings)

	for _, inv := range snap.Invoices {
		if err := check("invoice", inv.ID, inv.OrganizationID); err != nil {
			return st, err
		}
		st.Invoices = append(st.Invoices, inv)
	}

	for _, r := range snap.Reminders {
		if err := check("reminder", r.ID, r.OrganizationID); err != nil {
			return st, err
		}
		st.Reminders = append(st.Reminders, r)
	}
	models.SortReminders(st.Reminders)

	for _, n := range snap.Notifications {
		if err := check("notification", n.ID, n.OrganizationID); err != nil {
			return st, err
		}
		st.Notifications = append(st.Notifications, n)
	}

	for _, m := range snap.OtherMatters {
		if err := check("other matter", m.ID, m.OrganizationID); err != nil {
			return st, err
		}
		st.OtherMatters = append(st.OtherMatters, m)
	}

	return st, nil
}

func check(kind, id, orgID string) error {
	if id == "" {
		return malformed("%s without id", kind)
	}
	if orgID == "" {
		return malformed("%s %q without organizationId", kind, id)
	}
	return nil
}
