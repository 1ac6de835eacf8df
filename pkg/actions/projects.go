package actions

import (
	"context"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/store"
)

// find returns the first item whose id matches.
func find[T any](items []T, id string, idOf func(T) string) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// CreateProject stamps the current organization onto p and inserts it.
func (a *Actions) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	s, err := a.begin("createProject")
	if err != nil {
		return p, err
	}
	if err := models.RequireFields("name", p.Name); err != nil {
		return p, err
	}
	p.ID = a.idOr(p.ID)
	p.OrganizationID = s.org.ID
	p.Tasks = nil
	p.Updates = nil
	p.Normalize()

	if err := a.gw.CreateProject(ctx, p); err != nil {
		return p, err
	}
	a.apply("createProject", func(st *store.State) { st.UpsertProject(p) })
	return p, nil
}

// UpdateProject replaces the project's own fields. Tasks and updates are
// owned by the project and are left alone.
func (a *Actions) UpdateProject(ctx context.Context, p models.Project) error {
	s, err := a.begin("updateProject")
	if err != nil {
		return err
	}
	if _, ok := s.view.Project(p.ID); !ok {
		return apperr.NotFound("project", p.ID)
	}
	p.OrganizationID = s.org.ID
	p.Tasks = nil
	p.Updates = nil
	p.Normalize()

	if err := a.gw.UpdateProject(ctx, p); err != nil {
		return err
	}
	a.apply("updateProject", func(st *store.State) { st.UpsertProject(p) })
	return nil
}

// DeleteProject removes the project with its tasks, comments and updates and
// every invoice or meeting that references it.
func (a *Actions) DeleteProject(ctx context.Context, id string) error {
	s, err := a.begin("deleteProject")
	if err != nil {
		return err
	}
	if _, ok := s.view.Project(id); !ok {
		return apperr.NotFound("project", id)
	}
	if err := a.gw.DeleteProject(ctx, id); err != nil {
		return err
	}
	a.apply("deleteProject", func(st *store.State) { st.RemoveProject(id) })
	return nil
}

// AddProjectUpdate posts a timeline entry signed by the current user.
func (a *Actions) AddProjectUpdate(ctx context.Context, projectID, message string) (models.ProjectUpdate, error) {
	var u models.ProjectUpdate
	s, err := a.begin("addProjectUpdate")
	if err != nil {
		return u, err
	}
	if err := models.RequireFields("message", message); err != nil {
		return u, err
	}
	if _, ok := s.view.Project(projectID); !ok {
		return u, apperr.NotFound("project", projectID)
	}
	u = models.ProjectUpdate{
		ID:             a.newID(),
		ProjectID:      projectID,
		OrganizationID: s.org.ID,
		Message:        message,
		Date:           a.timestamp(),
		AuthorName:     s.user.Name,
		UserID:         models.StrPtr(s.user.ID),
	}
	if err := a.gw.AddProjectUpdate(ctx, u); err != nil {
		return u, err
	}
	a.apply("addProjectUpdate", func(st *store.State) { st.UpsertProjectUpdate(u) })
	return u, nil
}

func (a *Actions) projectUpdate(s *session, id string) (models.ProjectUpdate, bool) {
	for _, p := range s.view.Projects {
		if u, ok := find(p.Updates, id, func(u models.ProjectUpdate) string { return u.ID }); ok {
			return u, true
		}
	}
	return models.ProjectUpdate{}, false
}

// EditProjectUpdate rewrites the message of an existing entry.
func (a *Actions) EditProjectUpdate(ctx context.Context, id, message string) error {
	s, err := a.begin("editProjectUpdate")
	if err != nil {
		return err
	}
	if err := models.RequireFields("message", message); err != nil {
		return err
	}
	u, ok := a.projectUpdate(s, id)
	if !ok {
		return apperr.NotFound("project update", id)
	}
	if err := a.gw.EditProjectUpdate(ctx, id, message); err != nil {
		return err
	}
	u.Message = message
	a.apply("editProjectUpdate", func(st *store.State) { st.UpsertProjectUpdate(u) })
	return nil
}

func (a *Actions) DeleteProjectUpdate(ctx context.Context, id string) error {
	s, err := a.begin("deleteProjectUpdate")
	if err != nil {
		return err
	}
	if _, ok := a.projectUpdate(s, id); !ok {
		return apperr.NotFound("project update", id)
	}
	if err := a.gw.DeleteProjectUpdate(ctx, id); err != nil {
		return err
	}
	a.apply("deleteProjectUpdate", func(st *store.State) { st.RemoveProjectUpdate(id) })
	return nil
}
