package database

import (
	"context"
	"fmt"
	"strings"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, organization_id, name, email, role, avatar, phone, company,
	password_hash, is_admin, is_super_admin`

const insertUser = `
	INSERT INTO users (id, organization_id, name, email, role, avatar, phone, company,
		password_hash, is_admin, is_super_admin)
	VALUES (:id, :organization_id, :name, :email, :role, :avatar, :phone, :company,
		:password_hash, :is_admin, :is_super_admin)`

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser 创建用户
func (d *SQLDatabase) CreateUser(ctx context.Context, user *models.User) error {
	return d.createUser(ctx, d.db, user)
}

func (d *SQLDatabase) createUser(ctx context.Context, e sqlx.ExtContext, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if _, err := d.namedExec(ctx, e, insertUser, user); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("a user with email %s already exists", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail 根据邮箱获取用户
func (d *SQLDatabase) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	var u models.User
	if err := d.get(ctx, d.db, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return nil, notFound(err, "user", email)
	}
	return &u, nil
}

// GetUserByID 根据ID获取用户
func (d *SQLDatabase) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := d.get(ctx, d.db, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "user", id)
	}
	return &u, nil
}

// UpdateUser replaces the profile fields. Organization and password are not
// touched.
func (d *SQLDatabase) UpdateUser(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	res, err := d.namedExec(ctx, d.db, `
		UPDATE users
		SET name = :name, email = :email, role = :role, avatar = :avatar,
			phone = :phone, company = :company, is_admin = :is_admin
		WHERE id = :id`, user)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("a user with email %s already exists", user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOne(res, "user", user.ID)
}

func (d *SQLDatabase) ListUsersByOrganization(ctx context.Context, orgID string) ([]models.User, error) {
	return d.listUsers(ctx, d.db, orgID)
}

func (d *SQLDatabase) listUsers(ctx context.Context, q sqlx.ExtContext, orgID string) ([]models.User, error) {
	users := []models.User{}
	err := d.selectAll(ctx, q, &users,
		`SELECT `+userColumns+` FROM users WHERE organization_id = ? ORDER BY name, email`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ================= Organizations =================

const insertOrganization = `
	INSERT INTO organizations (id, name, created_at, status, subscription_status)
	VALUES (:id, :name, :created_at, :status, :subscription_status)`

func (d *SQLDatabase) CreateOrganization(ctx context.Context, org *models.Organization) error {
	return d.createOrganization(ctx, d.db, org)
}

func (d *SQLDatabase) createOrganization(ctx context.Context, e sqlx.ExtContext, org *models.Organization) error {
	if org.CreatedAt == "" {
		org.CreatedAt = d.timestamp()
	}
	if org.Status == "" {
		org.Status = models.OrgActive
	}
	if org.SubscriptionStatus == "" {
		org.SubscriptionStatus = models.SubscriptionTrial
	}
	if _, err := d.namedExec(ctx, e, insertOrganization, org); err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (d *SQLDatabase) CreateOrganizationWithAdmin(ctx context.Context, org *models.Organization, admin *models.User) error {
	return d.transaction(ctx, func(tx *sqlx.Tx) error {
		if err := d.createOrganization(ctx, tx, org); err != nil {
			return err
		}
		admin.OrganizationID = org.ID
		admin.IsAdmin = true
		return d.createUser(ctx, tx, admin)
	})
}

func (d *SQLDatabase) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	return d.getOrganization(ctx, d.db, id)
}

func (d *SQLDatabase) getOrganization(ctx context.Context, q sqlx.ExtContext, id string) (*models.Organization, error) {
	var o models.Organization
	err := d.get(ctx, q, &o,
		`SELECT id, name, created_at, status, subscription_status FROM organizations WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "organization", id)
	}
	return &o, nil
}

// FindOrganizationByName matches names case-insensitively, ignoring
// surrounding whitespace. The oldest match wins.
func (d *SQLDatabase) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	var o models.Organization
	err := d.get(ctx, d.db, &o, `
		SELECT id, name, created_at, status, subscription_status
		FROM organizations
		WHERE LOWER(TRIM(name)) = LOWER(?)
		ORDER BY created_at
		LIMIT 1`, name)
	if err != nil {
		return nil, notFound(err, "organization", name)
	}
	return &o, nil
}
