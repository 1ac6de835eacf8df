package models

// Snapshot is the full per-tenant read returned by GET /data.
// Tasks are flat with comments nested; the Entity Store nests tasks into
// their projects on load.
type Snapshot struct {
	User           *User           `json:"user"`
	Organization   *Organization   `json:"organization"`
	Users          []User          `json:"users"`
	Projects       []Project       `json:"projects"`
	Tasks          []Task          `json:"tasks"`
	ProjectUpdates []ProjectUpdate `json:"projectUpdates"`
	Meetings       []Meeting       `json:"meetings"`
	Invoices       []Invoice       `json:"invoices"`
	Notifications  []Notification  `json:"notifications"`
	Reminders      []Reminder      `json:"reminders"`
	OtherMatters   []OtherMatter   `json:"otherMatters"`
	AsOf           string          `json:"asOf,omitempty"`
}

// SignupRequest creates a user and either joins or creates an organization.
type SignupRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Company        string  `json:"company"`
	Role           string  `json:"role"`
	Phone          string  `json:"phone"`
	OrganizationID *string `json:"organizationId,omitempty"`
}

type SignupResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	OrgID   string `json:"orgId"`
	IsAdmin bool   `json:"isAdmin"`
	Joined  bool   `json:"joined"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User         User          `json:"user"`
	Organization *Organization `json:"organization"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int64         `json:"expiresIn"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CompleteTaskRequest struct {
	TaskID           string  `json:"taskId"`
	CompletedBy      string  `json:"completedBy"`
	Note             *string `json:"note,omitempty"`
	Image            *string `json:"image,omitempty"`
	CompletionImages List    `json:"completionImages"`
}

// Report extracts the completion report carried by the request.
func (r CompleteTaskRequest) Report() CompletionReport {
	return CompletionReport{Note: r.Note, Image: r.Image, Images: r.CompletionImages.OrEmpty()}
}

type CompleteTaskResponse struct {
	Success      bool          `json:"success"`
	CompletedAt  string        `json:"completedAt"`
	Notification *Notification `json:"notification"`
}

type TaskRefRequest struct {
	TaskID string `json:"taskId"`
}

type TaskStatusRequest struct {
	ID     string     `json:"id"`
	Status TaskStatus `json:"status"`
}

// IDRequest addresses a single row; UserID is optional and only consulted
// where the route enforces authorship.
type IDRequest struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
}

type EditProjectUpdateRequest struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type MeetingCompletionRequest struct {
	ID          string  `json:"id"`
	Completed   bool    `json:"completed"`
	CompletedBy *string `json:"completedBy,omitempty"`
}

type MutationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}
