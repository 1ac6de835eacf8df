package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	t0 = "2024-03-01T12:00:00Z"
	t1 = "2024-03-02T12:00:00Z"
)

func TestTaskCompleteAndReopen(t *testing.T) {
	task := Task{ID: "t-1", Title: "Frames", Status: TaskInProgress}
	task.Normalize()

	note := "done"
	task.Complete(t0, CompletionReport{Note: &note, Images: List{"a.jpg"}})
	assert.Equal(t, TaskCompleted, task.Status)
	assert.Equal(t, t0, Deref(task.CompletedAt))
	assert.Equal(t, "done", Deref(task.CompletionNote))
	assert.Equal(t, List{"a.jpg"}, task.CompletionImages)

	// completing again keeps the timestamp and replaces the report
	task.Complete(t1, CompletionReport{})
	assert.Equal(t, t0, Deref(task.CompletedAt))
	assert.Nil(t, task.CompletionNote)
	assert.Equal(t, List{}, task.CompletionImages)

	task.Reopen()
	assert.Equal(t, TaskPending, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.CompletionImage)
}

func TestTaskSetStatus(t *testing.T) {
	task := Task{ID: "t-1", Status: TaskPending}

	require.NoError(t, task.SetStatus(TaskInProgress))
	assert.Equal(t, TaskInProgress, task.Status)
	require.NoError(t, task.SetStatus(TaskPending))

	assert.Error(t, task.SetStatus(TaskCompleted))
	assert.Error(t, task.SetStatus("blocked"))

	task.Complete(t0, CompletionReport{})
	assert.Error(t, task.SetStatus(TaskPending))
	assert.Equal(t, TaskCompleted, task.Status)
}

func TestTaskNormalizeDropsStaleCompletion(t *testing.T) {
	task := Task{ID: "t-1", Status: TaskPending, CompletedAt: StrPtr(t0), CompletionNote: StrPtr("old")}
	task.Normalize()

	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.CompletionNote)
	assert.NotNil(t, task.Attachments)
	assert.NotNil(t, task.Comments)
}

func TestTaskCloneIsDeep(t *testing.T) {
	task := Task{ID: "t-1", Attachments: List{"a"}, Comments: []TaskComment{{ID: "c-1", Images: List{"x"}}}}
	c := task.Clone()
	c.Attachments[0] = "b"
	c.Comments[0].Images[0] = "y"

	assert.Equal(t, "a", task.Attachments[0])
	assert.Equal(t, "x", task.Comments[0].Images[0])
}

func TestCommentCanDelete(t *testing.T) {
	c := TaskComment{ID: "c-1", UserID: "u-2"}

	assert.True(t, c.CanDelete(&User{ID: "u-2"}))
	assert.True(t, c.CanDelete(&User{ID: "u-1", IsAdmin: true}))
	assert.True(t, c.CanDelete(&User{ID: "u-9", IsSuperAdmin: true}))
	assert.False(t, c.CanDelete(&User{ID: "u-3"}))
	assert.False(t, c.CanDelete(nil))
}

func TestProjectNormalize(t *testing.T) {
	p := Project{Progress: 140}
	p.Normalize()
	assert.Equal(t, 100, p.Progress)
	assert.Equal(t, ProjectActive, p.Status)
	assert.NotNil(t, p.Tasks)

	assert.Equal(t, 0, ClampProgress(-5))
	assert.Equal(t, 42, ClampProgress(42))
}
