package actions

import (
	"context"
	"fmt"
	"sync"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"
)

// fakeGateway keeps just enough server state to drive the actions: the
// snapshot it serves and the task table that completion decides on.
type fakeGateway struct {
	mu      sync.Mutex
	base    models.Snapshot
	calls   []string
	fail    map[string]error
	onFetch func()
	nextN   int
}

const fakeNow = "2024-04-01T10:00:00Z"

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		base: models.Snapshot{
			Organization: &models.Organization{ID: "org-1", Name: "Acme"},
			Users: []models.User{
				{ID: "u-1", OrganizationID: "org-1", Name: "Ada", Email: "ada@example.com", IsAdmin: true},
				{ID: "u-2", OrganizationID: "org-1", Name: "Bob", Email: "bob@example.com"},
			},
			Projects: []models.Project{{ID: "p-1", OrganizationID: "org-1", Name: "House"}},
			Tasks: []models.Task{{
				ID: "t-1", ProjectID: "p-1", OrganizationID: "org-1", Title: "Frames", CreatedBy: models.StrPtr("u-2"),
				Comments: []models.TaskComment{{ID: "c-1", TaskID: "t-1", OrganizationID: "org-1", UserID: "u-1", Message: "check level"}},
			}},
			Invoices: []models.Invoice{{ID: "i-1", OrganizationID: "org-1", Type: models.InvoiceSent, Amount: 1200,
				Status: models.InvoicePending, ProjectID: models.StrPtr("p-1")}},
			Meetings: []models.Meeting{{ID: "m-1", OrganizationID: "org-1", Title: "Site walk", Date: "2024-05-01",
				Time: "09:00", ProjectID: models.StrPtr("p-1")}},
			Notifications: []models.Notification{{ID: "n-1", OrganizationID: "org-1", UserID: "u-1", Message: "welcome"}},
		},
		fail: map[string]error{},
	}
}

func (f *fakeGateway) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.fail[name]
}

func (f *fakeGateway) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeGateway) userByEmail(email string) (models.User, bool) {
	for _, u := range f.base.Users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

func (f *fakeGateway) FetchSnapshot(_ context.Context, email string) (*models.Snapshot, error) {
	if err := f.call("FetchSnapshot"); err != nil {
		return nil, err
	}
	if hook := f.onFetch; hook != nil {
		f.onFetch = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.userByEmail(email)
	if !ok {
		return &models.Snapshot{}, nil
	}
	snap := f.base
	snap.User = &u
	return &snap, nil
}

func (f *fakeGateway) Login(_ context.Context, email, _ string) (*models.LoginResponse, error) {
	if err := f.call("Login"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.userByEmail(email)
	if !ok {
		return nil, apperr.NotFound("user", email)
	}
	return &models.LoginResponse{User: u, Organization: f.base.Organization}, nil
}

func (f *fakeGateway) Signup(_ context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	if err := f.call("Signup"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("u-%d", len(f.base.Users)+1)
	f.base.Users = append(f.base.Users, models.User{ID: id, OrganizationID: "org-1", Name: req.Name, Email: req.Email})
	return &models.SignupResponse{Success: true, UserID: id, OrgID: "org-1", Joined: true}, nil
}

func (f *fakeGateway) CreateProject(context.Context, models.Project) error { return f.call("CreateProject") }
func (f *fakeGateway) UpdateProject(context.Context, models.Project) error { return f.call("UpdateProject") }
func (f *fakeGateway) DeleteProject(context.Context, string) error { return f.call("DeleteProject") }

func (f *fakeGateway) CreateTask(_ context.Context, t models.Task) error {
	if err := f.call("CreateTask"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.base.Tasks = append(f.base.Tasks, t.Clone())
	return nil
}

func (f *fakeGateway) UpdateTask(context.Context, models.Task) error { return f.call("UpdateTask") }
func (f *fakeGateway) SetTaskStatus(context.Context, string, models.TaskStatus) error {
	return f.call("SetTaskStatus")
}

func (f *fakeGateway) CompleteTask(_ context.Context, req models.CompleteTaskRequest) (*models.CompleteTaskResponse, error) {
	if err := f.call("CompleteTask"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.base.Tasks {
		t := &f.base.Tasks[i]
		if t.ID != req.TaskID {
			continue
		}
		var completer *models.User
		for _, u := range f.base.Users {
			if u.ID == req.CompletedBy {
				u := u
				completer = &u
			}
		}
		f.nextN++
		id := fmt.Sprintf("n-srv-%d", f.nextN)
		n := models.CompletionNotification(id, *t, t.Status == models.TaskCompleted, completer, fakeNow, req.Report())
		t.Complete(fakeNow, req.Report())
		return &models.CompleteTaskResponse{Success: true, CompletedAt: *t.CompletedAt, Notification: n}, nil
	}
	return nil, apperr.NotFound("task", req.TaskID)
}

func (f *fakeGateway) UncompleteTask(_ context.Context, id string) error {
	if err := f.call("UncompleteTask"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.base.Tasks {
		if f.base.Tasks[i].ID == id {
			f.base.Tasks[i].Reopen()
		}
	}
	return nil
}

func (f *fakeGateway) DeleteTask(context.Context, string) error { return f.call("DeleteTask") }
func (f *fakeGateway) AddComment(context.Context, models.TaskComment) error {
	return f.call("AddComment")
}
func (f *fakeGateway) DeleteComment(context.Context, string, string) error {
	return f.call("DeleteComment")
}

func (f *fakeGateway) AddProjectUpdate(context.Context, models.ProjectUpdate) error {
	return f.call("AddProjectUpdate")
}
func (f *fakeGateway) EditProjectUpdate(context.Context, string, string) error {
	return f.call("EditProjectUpdate")
}
func (f *fakeGateway) DeleteProjectUpdate(context.Context, string) error {
	return f.call("DeleteProjectUpdate")
}

func (f *fakeGateway) CreateInvoice(context.Context, models.Invoice) error { return f.call("CreateInvoice") }
func (f *fakeGateway) UpdateInvoice(context.Context, models.Invoice) error { return f.call("UpdateInvoice") }
func (f *fakeGateway) DeleteInvoice(context.Context, string) error { return f.call("DeleteInvoice") }

func (f *fakeGateway) CreateMeeting(context.Context, models.Meeting) error { return f.call("CreateMeeting") }
func (f *fakeGateway) UpdateMeeting(context.Context, models.Meeting) error { return f.call("UpdateMeeting") }
func (f *fakeGateway) CompleteMeeting(context.Context, models.MeetingCompletionRequest) error {
	return f.call("CompleteMeeting")
}
func (f *fakeGateway) DeleteMeeting(context.Context, string) error { return f.call("DeleteMeeting") }

func (f *fakeGateway) CreateReminder(context.Context, models.Reminder) error {
	return f.call("CreateReminder")
}
func (f *fakeGateway) UpdateReminder(context.Context, models.Reminder) error {
	return f.call("UpdateReminder")
}
func (f *fakeGateway) DeleteReminder(context.Context, string) error { return f.call("DeleteReminder") }

func (f *fakeGateway) CreateOtherMatter(context.Context, models.OtherMatter) error {
	return f.call("CreateOtherMatter")
}
func (f *fakeGateway) UpdateOtherMatter(context.Context, models.OtherMatter) error {
	return f.call("UpdateOtherMatter")
}
func (f *fakeGateway) DeleteOtherMatter(context.Context, string) error {
	return f.call("DeleteOtherMatter")
}

func (f *fakeGateway) UpdateUser(context.Context, models.User) error { return f.call("UpdateUser") }
func (f *fakeGateway) MarkNotificationRead(context.Context, string) error {
	return f.call("MarkNotificationRead")
}

var _ Gateway = (*fakeGateway)(nil)
