package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"buildsync-backend/pkg/models"

	"github.com/charmbracelet/log"
)

// DatabaseInterface 定义数据库访问接口
// Every method is scoped by id; tenant checks that need the caller's
// organization live in the handlers.
type DatabaseInterface interface {
	// 用户管理
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsersByOrganization(ctx context.Context, orgID string) ([]models.User, error)

	// Organizations
	CreateOrganization(ctx context.Context, org *models.Organization) error
	// CreateOrganizationWithAdmin inserts a new organization and its first
	// user in one transaction.
	CreateOrganizationWithAdmin(ctx context.Context, org *models.Organization, admin *models.User) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error)

	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, orgID string) ([]models.Project, error)
	// DeleteProject removes the project together with its tasks, their
	// comments, its updates and any invoices or meetings that reference it.
	DeleteProject(ctx context.Context, id string) error

	// Project updates
	CreateProjectUpdate(ctx context.Context, u *models.ProjectUpdate) error
	EditProjectUpdate(ctx context.Context, id, message string) error
	DeleteProjectUpdate(ctx context.Context, id string) error
	ListProjectUpdates(ctx context.Context, orgID string) ([]models.ProjectUpdate, error)

	// Tasks & comments
	CreateTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	// ListTasks returns the organization's tasks with comments nested.
	ListTasks(ctx context.Context, orgID string) ([]models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	// CompleteTask persists the completed task and the notification it emits
	// (if any) in one transaction.
	CompleteTask(ctx context.Context, t *models.Task, n *models.Notification) error
	CreateTaskComment(ctx context.Context, c *models.TaskComment) error
	GetTaskComment(ctx context.Context, id string) (*models.TaskComment, error)
	DeleteTaskComment(ctx context.Context, id string) error

	// Meetings
	CreateMeeting(ctx context.Context, m *models.Meeting) error
	UpdateMeeting(ctx context.Context, m *models.Meeting) error
	GetMeeting(ctx context.Context, id string) (*models.Meeting, error)
	ListMeetings(ctx context.Context, orgID string) ([]models.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error

	// Invoices
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error
	ListInvoices(ctx context.Context, orgID string) ([]models.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error

	// Reminders
	CreateReminder(ctx context.Context, r *models.Reminder) error
	UpdateReminder(ctx context.Context, r *models.Reminder) error
	ListReminders(ctx context.Context, orgID string) ([]models.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error

	// Other matters
	CreateOtherMatter(ctx context.Context, m *models.OtherMatter) error
	UpdateOtherMatter(ctx context.Context, m *models.OtherMatter) error
	ListOtherMatters(ctx context.Context, orgID string) ([]models.OtherMatter, error)
	DeleteOtherMatter(ctx context.Context, id string) error

	// Notifications
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, orgID, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// ReadSnapshot loads the user's organization data as of one committed
	// state.
	ReadSnapshot(ctx context.Context, user *models.User) (*models.Snapshot, error)

	// Migrate applies the schema; it is safe to run repeatedly.
	Migrate(ctx context.Context) error
	// VerifyTables reports the expected tables missing from the schema.
	VerifyTables(ctx context.Context) ([]string, error)

	// 健康检查
	HealthCheck(ctx context.Context) error

	// 关闭连接
	Close() error
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver      string // "postgres" or "sqlite"
	PostgresDSN string
	SQLitePath  string
	Debug       bool
}

// DSN returns the data source for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.PostgresDSN
	}
	return c.SQLitePath
}

// NewDatabase 根据配置选择数据库实现
func NewDatabase(ctx context.Context, config DatabaseConfig, logger *log.Logger) (DatabaseInterface, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("db")

	switch strings.ToLower(config.Driver) {
	case "postgres":
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
		}
		if isServerlessEnvironment() {
			logger.Info("detected serverless environment, using conservative pool settings")
		}
		return OpenPostgres(ctx, config.PostgresDSN, config.Debug, logger)
	case "sqlite", "":
		if config.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
		return OpenSQLite(ctx, config.SQLitePath, config.Debug, logger)
	default:
		return nil, fmt.Errorf("unknown driver %q", config.Driver)
	}
}

// isServerlessEnvironment 内部检查 Vercel / Lambda 环境
func isServerlessEnvironment() bool {
	vercelEnv := os.Getenv("VERCEL_ENV")
	vercelURL := os.Getenv("VERCEL_URL")
	awsLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	return vercelEnv != "" || vercelURL != "" || awsLambda != ""
}
