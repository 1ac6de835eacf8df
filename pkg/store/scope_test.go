package store

import (
	"testing"

	"buildsync-backend/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mixedState holds two tenants' data side by side, including records that
// were wrongly nested under the other tenant's project.
func mixedState() State {
	st := emptyState()
	for _, org := range []string{"org-1", "org-2"} {
		st.Organizations = append(st.Organizations, models.Organization{ID: org})
		st.Users = append(st.Users, models.User{ID: "u-" + org, OrganizationID: org})
		st.Projects = append(st.Projects, models.Project{
			ID:             "p-" + org,
			OrganizationID: org,
			Tasks: []models.Task{
				{ID: "t-" + org, ProjectID: "p-" + org, OrganizationID: org,
					Comments: []models.TaskComment{{ID: "c-" + org, OrganizationID: org}}},
			},
			Updates: []models.ProjectUpdate{{ID: "pu-" + org, ProjectID: "p-" + org, OrganizationID: org}},
		})
		st.Meetings = append(st.Meetings, models.Meeting{ID: "m-" + org, OrganizationID: org})
		st.Invoices = append(st.Invoices, models.Invoice{ID: "i-" + org, OrganizationID: org})
		st.Reminders = append(st.Reminders, models.Reminder{ID: "r-" + org, OrganizationID: org})
		st.Notifications = append(st.Notifications, models.Notification{ID: "n-" + org, OrganizationID: org, UserID: "u-" + org})
		st.OtherMatters = append(st.OtherMatters, models.OtherMatter{ID: "om-" + org, OrganizationID: org})
	}
	// a stray org-2 task and comment under the org-1 project
	st.Projects[0].Tasks = append(st.Projects[0].Tasks, models.Task{ID: "t-stray", ProjectID: "p-org-1", OrganizationID: "org-2"})
	st.Projects[0].Tasks[0].Comments = append(st.Projects[0].Tasks[0].Comments, models.TaskComment{ID: "c-stray", OrganizationID: "org-2"})
	return st
}

// orgIDs collects the organizationId of every record in the view.
func orgIDs(v ScopedView) []string {
	var ids []string
	for _, u := range v.Users {
		ids = append(ids, u.OrganizationID)
	}
	for _, p := range v.Projects {
		ids = append(ids, p.OrganizationID)
		for _, t := range p.Tasks {
			ids = append(ids, t.OrganizationID)
			for _, c := range t.Comments {
				ids = append(ids, c.OrganizationID)
			}
		}
		for _, u := range p.Updates {
			ids = append(ids, u.OrganizationID)
		}
	}
	for _, m := range v.Meetings {
		ids = append(ids, m.OrganizationID)
	}
	for _, i := range v.Invoices {
		ids = append(ids, i.OrganizationID)
	}
	for _, r := range v.Reminders {
		ids = append(ids, r.OrganizationID)
	}
	for _, n := range v.Notifications {
		ids = append(ids, n.OrganizationID)
	}
	for _, m := range v.OtherMatters {
		ids = append(ids, m.OrganizationID)
	}
	return ids
}

func TestScopeIsolatesTenants(t *testing.T) {
	st := mixedState()

	for _, tc := range []struct{ self, other string }{
		{"org-1", "org-2"},
		{"org-2", "org-1"},
	} {
		t.Run(tc.self, func(t *testing.T) {
			v := ScopeTo(&st, tc.self)
			ids := orgIDs(v)
			require.NotEmpty(t, ids)
			assert.NotContains(t, ids, tc.other)

			assert.Len(t, v.Users, 1)
			assert.Len(t, v.Projects, 1)
			assert.Len(t, v.Meetings, 1)
			assert.Len(t, v.Invoices, 1)
			assert.Len(t, v.Reminders, 1)
			assert.Len(t, v.Notifications, 1)
			assert.Len(t, v.OtherMatters, 1)
			assert.Len(t, v.Tasks(), 1)
		})
	}
}

func TestScopeFailsClosedWithoutOrganization(t *testing.T) {
	st := mixedState()
	st.CurrentUser = &models.User{ID: "u-org-1", OrganizationID: "org-1"}

	v := Scope(&st)
	assert.Nil(t, v.Organization)
	assert.Nil(t, v.User)
	assert.NotNil(t, v.Users)
	assert.NotNil(t, v.Projects)
	assert.NotNil(t, v.Meetings)
	assert.NotNil(t, v.Invoices)
	assert.NotNil(t, v.Reminders)
	assert.NotNil(t, v.Notifications)
	assert.NotNil(t, v.OtherMatters)
	assert.Empty(t, orgIDs(v))
}

func TestScopeFollowsCurrentOrganization(t *testing.T) {
	st := mixedState()
	st.CurrentUser = &models.User{ID: "u-org-2", OrganizationID: "org-2"}
	st.CurrentOrganization = &models.Organization{ID: "org-2"}

	v := Scope(&st)
	require.NotNil(t, v.Organization)
	require.NotNil(t, v.User)
	assert.Equal(t, "org-2", v.Organization.ID)
	assert.NotContains(t, orgIDs(v), "org-1")

	task, ok := v.Task("t-org-2")
	require.True(t, ok)
	assert.Equal(t, "p-org-2", task.ProjectID)
	_, ok = v.Project("p-org-1")
	assert.False(t, ok)
	assert.Equal(t, 1, v.UnreadCount())
}

func TestScopeSharesNoMemory(t *testing.T) {
	st := mixedState()
	v := ScopeTo(&st, "org-1")

	v.Projects[0].Tasks[0].Title = "edited"
	v.Projects[0].Name = "edited"

	assert.Empty(t, st.Projects[0].Tasks[0].Title)
	assert.Empty(t, st.Projects[0].Name)
}

func TestScopeCopiesNotificationData(t *testing.T) {
	st := mixedState()
	st.Notifications[0].Data = models.Payload{"taskId": "t-org-1"}
	v := ScopeTo(&st, "org-1")

	require.Len(t, v.Notifications, 1)
	v.Notifications[0].Data["taskId"] = "edited"
	v.Notifications[0].Data["note"] = "added"

	assert.Equal(t, models.Payload{"taskId": "t-org-1"}, st.Notifications[0].Data)
}

func TestStoreViewUsesScope(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(sampleSnapshot()))

	s.Apply("foreign", func(st *State) {
		st.UpsertInvoice(models.Invoice{ID: "i-foreign", OrganizationID: "org-9"})
	})

	v := s.View()
	for _, inv := range v.Invoices {
		assert.Equal(t, "org-1", inv.OrganizationID)
	}
	assert.Len(t, s.State().Invoices, 2)
}
