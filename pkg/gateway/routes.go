package gateway

import (
	"context"
	"net/http"

	"buildsync-backend/pkg/actions"
	"buildsync-backend/pkg/models"
)

var _ actions.Gateway = (*Client)(nil)

type dataQuery struct {
	Email string `url:"email,omitempty"`
}

// FetchSnapshot GET /data
func (c *Client) FetchSnapshot(ctx context.Context, email string) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := c.makeRequest(ctx, http.MethodGet, "/data", dataQuery{Email: email}, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Login keeps the returned access token for later requests.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.makeRequest(ctx, http.MethodPost, "/login", nil, models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.setToken(resp.AccessToken)
	return &resp, nil
}

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	var resp models.SignupResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/signup", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// 项目

func (c *Client) CreateProject(ctx context.Context, p models.Project) error {
	return c.post(ctx, "/project", p)
}

func (c *Client) UpdateProject(ctx context.Context, p models.Project) error {
	return c.post(ctx, "/project/update", p)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.delete(ctx, "/project", id)
}

func (c *Client) AddProjectUpdate(ctx context.Context, u models.ProjectUpdate) error {
	return c.post(ctx, "/project/update-post", u)
}

func (c *Client) EditProjectUpdate(ctx context.Context, id, message string) error {
	return c.put(ctx, "/project/update", models.EditProjectUpdateRequest{ID: id, Message: message})
}

func (c *Client) DeleteProjectUpdate(ctx context.Context, id string) error {
	return c.delete(ctx, "/project/update", id)
}

// 任务

func (c *Client) CreateTask(ctx context.Context, t models.Task) error {
	return c.post(ctx, "/task", t)
}

func (c *Client) UpdateTask(ctx context.Context, t models.Task) error {
	return c.post(ctx, "/task/update", t)
}

func (c *Client) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	return c.post(ctx, "/task/status", models.TaskStatusRequest{ID: id, Status: status})
}

func (c *Client) CompleteTask(ctx context.Context, req models.CompleteTaskRequest) (*models.CompleteTaskResponse, error) {
	var resp models.CompleteTaskResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/task/complete", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UncompleteTask(ctx context.Context, taskID string) error {
	return c.post(ctx, "/task/uncomplete", models.TaskRefRequest{TaskID: taskID})
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.delete(ctx, "/task", id)
}

func (c *Client) AddComment(ctx context.Context, cm models.TaskComment) error {
	return c.post(ctx, "/task/comment", cm)
}

func (c *Client) DeleteComment(ctx context.Context, id, userID string) error {
	return c.mutate(ctx, http.MethodDelete, "/task/comment", models.IDRequest{ID: id, UserID: userID})
}

// 发票

func (c *Client) CreateInvoice(ctx context.Context, inv models.Invoice) error {
	return c.post(ctx, "/invoice", inv)
}

func (c *Client) UpdateInvoice(ctx context.Context, inv models.Invoice) error {
	return c.post(ctx, "/invoice/update", inv)
}

func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	return c.delete(ctx, "/invoice", id)
}

// 日程

func (c *Client) CreateMeeting(ctx context.Context, m models.Meeting) error {
	return c.post(ctx, "/meeting", m)
}

func (c *Client) UpdateMeeting(ctx context.Context, m models.Meeting) error {
	return c.post(ctx, "/meeting/update", m)
}

func (c *Client) CompleteMeeting(ctx context.Context, req models.MeetingCompletionRequest) error {
	return c.post(ctx, "/meeting/complete", req)
}

func (c *Client) DeleteMeeting(ctx context.Context, id string) error {
	return c.delete(ctx, "/meeting", id)
}

func (c *Client) CreateReminder(ctx context.Context, r models.Reminder) error {
	return c.post(ctx, "/reminder", r)
}

func (c *Client) UpdateReminder(ctx context.Context, r models.Reminder) error {
	return c.post(ctx, "/reminder/update", r)
}

func (c *Client) DeleteReminder(ctx context.Context, id string) error {
	return c.delete(ctx, "/reminder", id)
}

func (c *Client) CreateOtherMatter(ctx context.Context, m models.OtherMatter) error {
	return c.post(ctx, "/other-matter", m)
}

func (c *Client) UpdateOtherMatter(ctx context.Context, m models.OtherMatter) error {
	return c.put(ctx, "/other-matter", m)
}

func (c *Client) DeleteOtherMatter(ctx context.Context, id string) error {
	return c.delete(ctx, "/other-matter", id)
}

// 用户

func (c *Client) UpdateUser(ctx context.Context, u models.User) error {
	return c.post(ctx, "/user/update", u)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.post(ctx, "/notification/read", models.IDRequest{ID: id})
}
