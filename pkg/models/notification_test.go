package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionNotification(t *testing.T) {
	task := Task{ID: "t-1", OrganizationID: "org-1", Title: "Frames", CreatedBy: StrPtr("u-1")}
	bob := &User{ID: "u-2", Name: "Bob"}
	ada := &User{ID: "u-1", Name: "Ada"}
	note := "all square"

	n := CompletionNotification("n-1", task, false, bob, t0, CompletionReport{Note: &note, Images: List{"a.jpg", "b.jpg"}})
	require.NotNil(t, n)
	assert.Equal(t, "u-1", n.UserID)
	assert.Equal(t, "org-1", n.OrganizationID)
	assert.Equal(t, NotificationTaskCompleted, n.Type)
	assert.False(t, n.Read)
	assert.Contains(t, n.Message, "Bob")
	assert.Equal(t, Payload{"taskId": "t-1", "note": "all square", "image": "a.jpg"}, n.Data)

	assert.Nil(t, CompletionNotification("n-2", task, false, ada, t0, CompletionReport{}), "creator completed own task")
	assert.Nil(t, CompletionNotification("n-3", task, true, bob, t0, CompletionReport{}), "already completed")
	assert.Nil(t, CompletionNotification("n-4", Task{ID: "t-2"}, false, bob, t0, CompletionReport{}), "no creator")
	assert.Nil(t, CompletionNotification("n-5", task, false, nil, t0, CompletionReport{}), "unknown completer")
}

func TestPayloadScan(t *testing.T) {
	var p Payload
	require.NoError(t, p.Scan(`{"taskId":"t-1"}`))
	assert.Equal(t, Payload{"taskId": "t-1"}, p)

	require.NoError(t, p.Scan([]byte("not json")))
	assert.Nil(t, p)

	require.NoError(t, p.Scan(nil))
	assert.Nil(t, p)

	v, err := Payload{"a": "b"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"b"}`, v.(string))

	v, err = Payload(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSortSchedule(t *testing.T) {
	ms := []Meeting{
		{ID: "c", Date: "2024-05-02", Time: "08:00"},
		{ID: "b", Date: "2024-05-01", Time: "14:00"},
		{ID: "a", Date: "2024-05-01", Time: "09:00"},
	}
	SortMeetings(ms)
	assert.Equal(t, []string{"a", "b", "c"}, []string{ms[0].ID, ms[1].ID, ms[2].ID})

	rs := []Reminder{{ID: "y", Date: "2024-06-01"}, {ID: "x", Date: "2024-01-01"}, {ID: "z", Date: "2024-06-01"}}
	SortReminders(rs)
	assert.Equal(t, []string{"x", "y", "z"}, []string{rs[0].ID, rs[1].ID, rs[2].ID})
}

func TestInvoiceValidate(t *testing.T) {
	inv := Invoice{Type: InvoiceReceived, Amount: 10}
	require.NoError(t, inv.Validate())
	assert.Equal(t, InvoicePending, inv.Status)

	for _, bad := range []Invoice{
		{Type: "gift"},
		{Type: InvoiceSent, Amount: -1},
		{Type: InvoiceSent, Status: "lost"},
	} {
		assert.Error(t, bad.Validate())
	}
}

func TestRequireFields(t *testing.T) {
	assert.NoError(t, RequireFields("name", "x", "email", "y"))
	err := RequireFields("name", "x", "email", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}
