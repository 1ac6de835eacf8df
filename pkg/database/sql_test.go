package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SQLDatabase {
	t.Helper()
	ctx := context.Background()
	d, err := OpenSQLite(ctx, ":memory:", false, log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	require.NoError(t, d.Migrate(ctx))
	return d
}

func seedOrg(t *testing.T, d *SQLDatabase, id, name string) {
	t.Helper()
	require.NoError(t, d.CreateOrganization(context.Background(), &models.Organization{ID: id, Name: name}))
}

func seedProject(t *testing.T, d *SQLDatabase, id, orgID string) *models.Project {
	t.Helper()
	p := &models.Project{ID: id, OrganizationID: orgID, Name: "Project " + id, Progress: 140}
	require.NoError(t, d.CreateProject(context.Background(), p))
	return p
}

func seedTask(t *testing.T, d *SQLDatabase, id, projectID, orgID string) *models.Task {
	t.Helper()
	task := &models.Task{ID: id, ProjectID: projectID, OrganizationID: orgID, Title: "Task " + id, RequiredDate: "2024-04-01"}
	require.NoError(t, d.CreateTask(context.Background(), task))
	return task
}

func TestMigrateIsRepeatable(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.Migrate(ctx))

	missing, err := d.VerifyTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestUsers(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")

	u := &models.User{ID: "u-1", OrganizationID: "org-1", Name: "Ada", Email: "  Ada@Example.com ", Role: models.RoleBuilder}
	require.NoError(t, d.CreateUser(ctx, u))

	got, err := d.GetUserByEmail(ctx, "ada@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Nil(t, got.Phone)

	dup := &models.User{ID: "u-2", OrganizationID: "org-1", Email: "ada@example.com"}
	assert.ErrorIs(t, d.CreateUser(ctx, dup), apperr.ErrConflict)

	_, err = d.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got.Name = "Ada L."
	got.Phone = models.StrPtr("555-0100")
	require.NoError(t, d.UpdateUser(ctx, got))
	got, err = d.GetUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, "555-0100", models.Deref(got.Phone))
}

func TestCreateOrganizationWithAdmin(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	org := &models.Organization{ID: "org-1", Name: "Acme Builders"}
	admin := &models.User{ID: "u-1", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, d.CreateOrganizationWithAdmin(ctx, org, admin))

	found, err := d.FindOrganizationByName(ctx, "  acme BUILDERS ")
	require.NoError(t, err)
	assert.Equal(t, "org-1", found.ID)
	assert.Equal(t, models.OrgActive, found.Status)
	assert.Equal(t, models.SubscriptionTrial, found.SubscriptionStatus)

	users, err := d.ListUsersByOrganization(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin)

	// a failing user insert leaves no organization behind
	again := &models.Organization{ID: "org-2", Name: "Other"}
	clash := &models.User{ID: "u-2", Email: "ada@example.com"}
	assert.ErrorIs(t, d.CreateOrganizationWithAdmin(ctx, again, clash), apperr.ErrConflict)
	_, err = d.GetOrganization(ctx, "org-2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProjectProgressIsClamped(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")
	seedProject(t, d, "p-1", "org-1")

	p, err := d.GetProject(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Progress)
	assert.Equal(t, models.ProjectActive, p.Status)
	assert.NotNil(t, p.Tasks)
}

func TestUpdateProjectStaysInsideOrganization(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")
	seedOrg(t, d, "org-2", "Other")
	p := seedProject(t, d, "p-1", "org-1")

	p.OrganizationID = "org-2"
	p.Name = "Hijacked"
	assert.ErrorIs(t, d.UpdateProject(ctx, p), apperr.ErrNotFound)

	got, err := d.GetProject(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Project p-1", got.Name)
}

func TestDeleteProjectCascades(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")
	seedProject(t, d, "p-1", "org-1")
	seedProject(t, d, "p-2", "org-1")
	seedTask(t, d, "t-1", "p-1", "org-1")
	seedTask(t, d, "t-2", "p-2", "org-1")

	require.NoError(t, d.CreateTaskComment(ctx, &models.TaskComment{ID: "c-1", TaskID: "t-1", OrganizationID: "org-1", UserID: "u-1", Message: "hi"}))
	require.NoError(t, d.CreateTaskComment(ctx, &models.TaskComment{ID: "c-2", TaskID: "t-2", OrganizationID: "org-1", UserID: "u-1", Message: "keep"}))
	require.NoError(t, d.CreateProjectUpdate(ctx, &models.ProjectUpdate{ID: "pu-1", ProjectID: "p-1", OrganizationID: "org-1", Message: "framing"}))
	require.NoError(t, d.CreateInvoice(ctx, &models.Invoice{ID: "i-1", OrganizationID: "org-1", Type: models.InvoiceSent, Amount: 100, ProjectID: models.StrPtr("p-1")}))
	require.NoError(t, d.CreateInvoice(ctx, &models.Invoice{ID: "i-2", OrganizationID: "org-1", Type: models.InvoiceReceived, Amount: 50}))
	require.NoError(t, d.CreateMeeting(ctx, &models.Meeting{ID: "m-1", OrganizationID: "org-1", Title: "site", ProjectID: models.StrPtr("p-1")}))
	require.NoError(t, d.CreateMeeting(ctx, &models.Meeting{ID: "m-2", OrganizationID: "org-1", Title: "office"}))

	require.NoError(t, d.DeleteProject(ctx, "p-1"))

	projects, err := d.ListProjects(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p-2", projects[0].ID)

	tasks, err := d.ListTasks(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t-2", tasks[0].ID)
	require.Len(t, tasks[0].Comments, 1)
	assert.Equal(t, "c-2", tasks[0].Comments[0].ID)

	_, err = d.GetTaskComment(ctx, "c-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updates, err := d.ListProjectUpdates(ctx, "org-1")
	require.NoError(t, err)
	assert.Empty(t, updates)

	invoices, err := d.ListInvoices(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "i-2", invoices[0].ID)

	meetings, err := d.ListMeetings(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "m-2", meetings[0].ID)

	assert.ErrorIs(t, d.DeleteProject(ctx, "p-1"), apperr.ErrNotFound)
}

func TestDeleteTaskRemovesComments(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")
	seedProject(t, d, "p-1", "org-1")
	seedTask(t, d, "t-1", "p-1", "org-1")
	require.NoError(t, d.CreateTaskComment(ctx, &models.TaskComment{ID: "c-1", TaskID: "t-1", OrganizationID: "org-1", UserID: "u-1"}))

	require.NoError(t, d.DeleteTask(ctx, "t-1"))

	_, err := d.GetTaskComment(ctx, "c-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, d.DeleteTask(ctx, "t-1"), apperr.ErrNotFound)
}

func TestTaskListColumnsRoundTrip(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")
	seedProject(t, d, "p-1", "org-1")

	blobs := models.List{"https://cdn.example.com/a.jpg", "data:image/png;base64,iVBORw0KGgo="}
	task := &models.Task{ID: "t-1", ProjectID: "p-1", OrganizationID: "org-1", Title: "Frames", Attachments: blobs}
	require.NoError(t, d.CreateTask(ctx, task))
	seedTask(t, d, "t-2", "p-1", "org-1")

	// rows written by older clients hold a bare string instead of JSON
	_, err := d.db.ExecContext(ctx, `UPDATE tasks SET completion_images = 'photo.jpg' WHERE id = 't-2'`)
	require.NoError(t, err)

	got, err := d.GetTask(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, blobs, got.Attachments)
	assert.Equal(t, models.List{}, got.CompletionImages)
	assert.Equal(t, []models.TaskComment{}, got.Comments)

	var raw string
	require.NoError(t, d.db.GetContext(ctx, &raw, `SELECT completion_images FROM tasks WHERE id = 't-1'`))
	assert.Equal(t, "[]", raw)

	legacy, err := d.GetTask(ctx, "t-2")
	require.NoError(t, err)
	// pending tasks never carry completion data
	assert.Equal(t, models.List{}, legacy.CompletionImages)

	_, err = d.db.ExecContext(ctx, `UPDATE tasks SET status = 'completed', completed_at = '2024-04-01T00:00:00Z' WHERE id = 't-2'`)
	require.NoError(t, err)
	legacy, err = d.GetTask(ctx, "t-2")
	require.NoError(t, err)
	assert.Equal(t, models.List{"photo.jpg"}, legacy.CompletionImages)
}

func TestCompleteTaskStoresNotification(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")
	seedProject(t, d, "p-1", "org-1")
	task := seedTask(t, d, "t-1", "p-1", "org-1")

	note := "done"
	task.Complete("2024-04-01T10:00:00Z", models.CompletionReport{Note: &note})
	n := &models.Notification{
		ID:             "n-1",
		OrganizationID: "org-1",
		UserID:         "u-creator",
		Message:        "Bob completed",
		Type:           models.NotificationTaskCompleted,
		Data:           models.Payload{"taskId": "t-1", "note": "done"},
	}
	require.NoError(t, d.CompleteTask(ctx, task, n))

	got, err := d.GetTask(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, got.Status)
	assert.Equal(t, "2024-04-01T10:00:00Z", models.Deref(got.CompletedAt))
	assert.Equal(t, "done", models.Deref(got.CompletionNote))

	feed, err := d.ListNotifications(ctx, "org-1", "u-creator")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.False(t, feed[0].Read)
	assert.Equal(t, "t-1", feed[0].Data["taskId"])

	require.NoError(t, d.MarkNotificationRead(ctx, "n-1"))
	feed, err = d.ListNotifications(ctx, "org-1", "u-creator")
	require.NoError(t, err)
	assert.True(t, feed[0].Read)

	// the notification insert failing must not leave the task completed
	other := seedTask(t, d, "t-2", "p-1", "org-1")
	other.Complete("2024-04-02T10:00:00Z", models.CompletionReport{})
	dup := *n
	require.Error(t, d.CompleteTask(ctx, other, &dup))
	got, err = d.GetTask(ctx, "t-2")
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, got.Status)
}

func TestMeetingsAndRemindersAreOrdered(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")

	for _, m := range []models.Meeting{
		{ID: "m-1", OrganizationID: "org-1", Title: "late", Date: "2024-05-02", Time: "09:00"},
		{ID: "m-2", OrganizationID: "org-1", Title: "early", Date: "2024-05-01", Time: "14:00"},
		{ID: "m-3", OrganizationID: "org-1", Title: "earliest", Date: "2024-05-01", Time: "08:30", Attendees: models.List{"u-1", "u-2"}},
	} {
		m := m
		require.NoError(t, d.CreateMeeting(ctx, &m))
	}
	meetings, err := d.ListMeetings(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, meetings, 3)
	assert.Equal(t, "m-3", meetings[0].ID)
	assert.Equal(t, models.List{"u-1", "u-2"}, meetings[0].Attendees)
	assert.Equal(t, models.List{}, meetings[1].Attendees)

	require.NoError(t, d.CreateReminder(ctx, &models.Reminder{ID: "r-1", OrganizationID: "org-1", Title: "b", Date: "2024-06-02"}))
	require.NoError(t, d.CreateReminder(ctx, &models.Reminder{ID: "r-2", OrganizationID: "org-1", Title: "a", Date: "2024-06-01"}))
	reminders, err := d.ListReminders(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, "r-2", reminders[0].ID)

	reminders[0].Completed = true
	reminders[0].CompletedBy = models.StrPtr("u-1")
	require.NoError(t, d.UpdateReminder(ctx, &reminders[0]))
	assert.ErrorIs(t, d.DeleteReminder(ctx, "missing"), apperr.ErrNotFound)
}

func TestInvoiceSchemaDriftIsPatchedOnce(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")

	_, err := d.db.ExecContext(ctx, `ALTER TABLE invoices DROP COLUMN attachment_url`)
	require.NoError(t, err)

	inv := &models.Invoice{
		ID:             "i-1",
		OrganizationID: "org-1",
		Type:           models.InvoiceSent,
		Amount:         1250.5,
		ClientName:     "Jones",
		AttachmentURL:  models.StrPtr("https://cdn.example.com/i-1.pdf"),
	}
	require.NoError(t, d.CreateInvoice(ctx, inv))
	assert.Equal(t, models.InvoicePending, inv.Status)

	var url string
	require.NoError(t, d.db.GetContext(ctx, &url, `SELECT attachment_url FROM invoices WHERE id = 'i-1'`))
	assert.Equal(t, "https://cdn.example.com/i-1.pdf", url)

	// the column now exists for every later call
	inv.Status = models.InvoicePaid
	require.NoError(t, d.UpdateInvoice(ctx, inv))
	invoices, err := d.ListInvoices(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, models.InvoicePaid, invoices[0].Status)

	require.NoError(t, d.Migrate(ctx))
}

func TestInvoiceValidation(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	err := d.CreateInvoice(ctx, &models.Invoice{ID: "i-1", OrganizationID: "org-1", Type: "gift", Amount: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = d.CreateInvoice(ctx, &models.Invoice{ID: "i-1", OrganizationID: "org-1", Type: models.InvoiceSent, Amount: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProjectUpdatesAndOtherMatters(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")

	require.NoError(t, d.CreateProjectUpdate(ctx, &models.ProjectUpdate{ID: "pu-1", ProjectID: "p-1", OrganizationID: "org-1", Message: "draft", Date: "2024-03-01"}))
	require.NoError(t, d.EditProjectUpdate(ctx, "pu-1", "final"))
	updates, err := d.ListProjectUpdates(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "final", updates[0].Message)
	assert.ErrorIs(t, d.EditProjectUpdate(ctx, "missing", "x"), apperr.ErrNotFound)
	require.NoError(t, d.DeleteProjectUpdate(ctx, "pu-1"))

	m := &models.OtherMatter{ID: "om-1", OrganizationID: "org-1", Title: "Skip bin", Note: "call council"}
	require.NoError(t, d.CreateOtherMatter(ctx, m))
	m.Note = "booked"
	require.NoError(t, d.UpdateOtherMatter(ctx, m))
	matters, err := d.ListOtherMatters(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, matters, 1)
	assert.Equal(t, "booked", matters[0].Note)
	require.NoError(t, d.DeleteOtherMatter(ctx, "om-1"))
	assert.ErrorIs(t, d.DeleteOtherMatter(ctx, "om-1"), apperr.ErrNotFound)
}

func TestCanceledTransactionIsNotReportedAsCommitted(t *testing.T) {
	// a file keeps the data when the canceled transaction drops its connection
	d, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "buildsync.db"), false, log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(context.Background()))
	seedOrg(t, d, "org-1", "Acme")
	seedProject(t, d, "p-1", "org-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = d.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := d.exec(ctx, tx, `DELETE FROM projects WHERE id = ?`, "p-1"); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	p, err := d.GetProject(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "org-1", p.OrganizationID)
}

func TestReadSnapshot(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedOrg(t, d, "org-1", "Acme")
	seedOrg(t, d, "org-2", "Globex")
	seedProject(t, d, "p-1", "org-1")
	seedProject(t, d, "p-9", "org-2")
	seedTask(t, d, "t-1", "p-1", "org-1")
	seedTask(t, d, "t-9", "p-9", "org-2")

	ada := &models.User{ID: "u-1", OrganizationID: "org-1", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, d.CreateUser(ctx, ada))
	require.NoError(t, d.CreateUser(ctx, &models.User{ID: "u-9", OrganizationID: "org-2", Name: "Eve", Email: "eve@example.com"}))
	require.NoError(t, d.CreateTaskComment(ctx, &models.TaskComment{ID: "c-1", TaskID: "t-1", OrganizationID: "org-1", UserID: "u-1", Message: "hi"}))
	require.NoError(t, d.CreateInvoice(ctx, &models.Invoice{ID: "i-1", OrganizationID: "org-1", Type: models.InvoiceSent, Amount: 10}))
	require.NoError(t, d.CreateNotification(ctx, &models.Notification{ID: "n-1", OrganizationID: "org-1", UserID: "u-1", Message: "for Ada"}))
	require.NoError(t, d.CreateNotification(ctx, &models.Notification{ID: "n-2", OrganizationID: "org-1", UserID: "u-2", Message: "for someone else"}))
	require.NoError(t, d.CreateReminder(ctx, &models.Reminder{ID: "r-1", OrganizationID: "org-1", Title: "call", Date: "2024-05-01"}))

	snap, err := d.ReadSnapshot(ctx, ada)
	require.NoError(t, err)
	assert.Same(t, ada, snap.User)
	require.NotNil(t, snap.Organization)
	assert.Equal(t, "Acme", snap.Organization.Name)
	require.Len(t, snap.Users, 1)
	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "p-1", snap.Projects[0].ID)
	require.Len(t, snap.Tasks, 1)
	require.Len(t, snap.Tasks[0].Comments, 1)
	assert.Len(t, snap.Invoices, 1)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, "n-1", snap.Notifications[0].ID)
	assert.Len(t, snap.Reminders, 1)
	assert.NotNil(t, snap.Meetings)
	assert.NotNil(t, snap.ProjectUpdates)
	assert.NotNil(t, snap.OtherMatters)

	// a user whose organization is gone still gets a snapshot
	orphan := &models.User{ID: "u-7", OrganizationID: "org-gone", Email: "gone@example.com"}
	snap, err = d.ReadSnapshot(ctx, orphan)
	require.NoError(t, err)
	assert.Nil(t, snap.Organization)
	assert.Empty(t, snap.Projects)
}
