// Package actions implements the state transitions a client performs: each
// one checks its preconditions against the scoped view, persists through the
// Gateway, then applies the same change to the local store.
package actions

import (
	"context"
	"fmt"
	"time"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/store"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Gateway is the request/response boundary to the sync backend. Every call
// is independent; creates carry a caller generated id so a retry with the
// same id never duplicates the row.
type Gateway interface {
	FetchSnapshot(ctx context.Context, email string) (*models.Snapshot, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error)

	CreateProject(ctx context.Context, p models.Project) error
	UpdateProject(ctx context.Context, p models.Project) error
	DeleteProject(ctx context.Context, id string) error

	CreateTask(ctx context.Context, t models.Task) error
	UpdateTask(ctx context.Context, t models.Task) error
	SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) error
	CompleteTask(ctx context.Context, req models.CompleteTaskRequest) (*models.CompleteTaskResponse, error)
	UncompleteTask(ctx context.Context, taskID string) error
	DeleteTask(ctx context.Context, id string) error
	AddComment(ctx context.Context, c models.TaskComment) error
	DeleteComment(ctx context.Context, id, userID string) error

	AddProjectUpdate(ctx context.Context, u models.ProjectUpdate) error
	EditProjectUpdate(ctx context.Context, id, message string) error
	DeleteProjectUpdate(ctx context.Context, id string) error

	CreateInvoice(ctx context.Context, inv models.Invoice) error
	UpdateInvoice(ctx context.Context, inv models.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error

	CreateMeeting(ctx context.Context, m models.Meeting) error
	UpdateMeeting(ctx context.Context, m models.Meeting) error
	CompleteMeeting(ctx context.Context, req models.MeetingCompletionRequest) error
	DeleteMeeting(ctx context.Context, id string) error

	CreateReminder(ctx context.Context, r models.Reminder) error
	UpdateReminder(ctx context.Context, r models.Reminder) error
	DeleteReminder(ctx context.Context, id string) error

	CreateOtherMatter(ctx context.Context, m models.OtherMatter) error
	UpdateOtherMatter(ctx context.Context, m models.OtherMatter) error
	DeleteOtherMatter(ctx context.Context, id string) error

	UpdateUser(ctx context.Context, u models.User) error
	MarkNotificationRead(ctx context.Context, id string) error
}

// Actions is the single writer of a client session.
type Actions struct {
	store  *store.Store
	gw     Gateway
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures Actions.
type Option func(*Actions)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Actions) { a.now = now }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(a *Actions) { a.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Actions) { a.logger = l }
}

func New(s *store.Store, gw Gateway, opts ...Option) *Actions {
	a := &Actions{
		store:  s,
		gw:     gw,
		logger: log.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithPrefix("actions")
	return a
}

// Store exposes the store the actions write to.
func (a *Actions) Store() *store.Store {
	return a.store
}

func (a *Actions) timestamp() string {
	return models.Timestamp(a.now())
}

// session is what every action needs: the scoped view and who is acting.
type session struct {
	user *models.User
	org  *models.Organization
	view store.ScopedView
}

// begin resolves the session for action, failing with a configuration
// error when no organization is active.
func (a *Actions) begin(action string) (*session, error) {
	v := a.store.View()
	if v.Organization == nil || v.User == nil {
		a.logger.Warn("action issued without an active organization", "action", action)
		return nil, apperr.NoOrganization(action)
	}
	return &session{user: v.User, org: v.Organization, view: v}, nil
}

// apply journals a local mutation after it has been persisted.
func (a *Actions) apply(action string, fn store.Mutation) {
	seq := a.store.Apply(action, fn)
	a.logger.Debug("applied", "action", action, "seq", seq)
}

func (a *Actions) idOr(id string) string {
	if id != "" {
		return id
	}
	return a.newID()
}

// Login resolves the user by email and loads their organization's snapshot.
// An unknown email is rejected with a NotFound error; there is no fallback
// identity.
func (a *Actions) Login(ctx context.Context, email, password string) error {
	resp, err := a.gw.Login(ctx, email, password)
	if err != nil {
		return err
	}
	snap, err := a.gw.FetchSnapshot(ctx, resp.User.Email)
	if err != nil {
		return err
	}
	if snap.User == nil {
		return apperr.NotFound("user", email)
	}
	if err := a.store.Load(snap); err != nil {
		return err
	}
	a.logger.Info("logged in", "user", snap.User.ID, "org", snap.User.OrganizationID)
	return nil
}

// Signup registers and then logs in as the new user.
func (a *Actions) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	if err := models.RequireFields("name", req.Name, "email", req.Email); err != nil {
		return nil, err
	}
	resp, err := a.gw.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := a.Login(ctx, req.Email, req.Password); err != nil {
		return resp, fmt.Errorf("signed up but could not log in: %w", err)
	}
	return resp, nil
}

// Logout empties the store.
func (a *Actions) Logout() {
	a.store.Reset()
}

// Refresh pulls a fresh snapshot. Mutations applied locally while the fetch
// was in flight are replayed on top of it instead of being discarded.
func (a *Actions) Refresh(ctx context.Context) error {
	user, _ := a.store.Session()
	if user == nil {
		return apperr.NoOrganization("refresh")
	}
	since := a.store.Seq()
	snap, err := a.gw.FetchSnapshot(ctx, user.Email)
	if err != nil {
		return err
	}
	replayed, err := a.store.LoadSince(snap, since)
	if err != nil {
		return err
	}
	if replayed > 0 {
		a.logger.Info("replayed in-flight mutations over refreshed snapshot", "count", replayed)
	}
	return nil
}
