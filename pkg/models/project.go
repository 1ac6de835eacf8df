package models

// ProjectStatus is the lifecycle state of a Project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// Project owns its Tasks and Updates by composition.
type Project struct {
	ID             string          `json:"id" db:"id"`
	OrganizationID string          `json:"organizationId" db:"organization_id"`
	Name           string          `json:"name" db:"name"`
	Address        string          `json:"address" db:"address"`
	ClientName     string          `json:"clientName" db:"client_name"`
	ClientEmail    *string         `json:"clientEmail,omitempty" db:"client_email"`
	ClientPhone    *string         `json:"clientPhone,omitempty" db:"client_phone"`
	Status         ProjectStatus   `json:"status" db:"status"`
	Progress       int             `json:"progress" db:"progress"`
	StartDate      string          `json:"startDate" db:"start_date"`
	EndDate        string          `json:"endDate" db:"end_date"`
	Color          string          `json:"color" db:"color"`
	Tasks          []Task          `json:"tasks" db:"-"`
	Updates        []ProjectUpdate `json:"updates,omitempty" db:"-"`
}

// ClampProgress keeps progress within [0, 100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Normalize applies the invariants every stored project satisfies.
func (p *Project) Normalize() {
	p.Progress = ClampProgress(p.Progress)
	if p.Status == "" {
		p.Status = ProjectActive
	}
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	for i := range p.Tasks {
		p.Tasks[i].Normalize()
	}
}

// Clone deep-copies the project including its tasks and updates.
func (p Project) Clone() Project {
	out := p
	out.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		out.Tasks[i] = t.Clone()
	}
	if p.Updates != nil {
		out.Updates = make([]ProjectUpdate, len(p.Updates))
		copy(out.Updates, p.Updates)
	}
	return out
}

// ProjectUpdate is an independent timeline entry on a project.
type ProjectUpdate struct {
	ID             string  `json:"id" db:"id"`
	ProjectID      string  `json:"projectId" db:"project_id"`
	OrganizationID string  `json:"organizationId" db:"organization_id"`
	Message        string  `json:"message" db:"message"`
	Date           string  `json:"date" db:"date"`
	AuthorName     string  `json:"authorName" db:"author_name"`
	UserID         *string `json:"userId,omitempty" db:"user_id"`
}
