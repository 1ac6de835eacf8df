package handlers

import (
	"errors"
	"net/http"
	"strings"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/utils"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	base
	jwt *utils.JWTService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, db database.DatabaseInterface) *AuthHandler {
	return &AuthHandler{
		base: newBase(cfg, db),
		jwt:  utils.NewJWTService(cfg.JWTSecret),
	}
}

// Signup 用户注册
// With organizationId the user joins that organization. Without it, an
// existing organization whose name matches company (case-insensitively) is
// joined; otherwise a new one is created with the user as its admin.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.SignupRequest](&h.base, w, r)
	if !ok {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = database.NormalizeEmail(req.Email)
	if !h.require(w, r, "name", req.Name, "email", req.Email) {
		return
	}

	ctx := r.Context()
	if _, err := h.db.GetUserByEmail(ctx, req.Email); err == nil {
		h.fail(w, r, apperr.Conflict("a user with email %s already exists", req.Email))
		return
	} else if !errors.Is(err, apperr.ErrNotFound) {
		h.fail(w, r, err)
		return
	}

	user := &models.User{
		ID:    h.newID(),
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	if user.Role == "" {
		user.Role = models.RoleBuilder
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = models.StrPtr(phone)
	}
	if company := strings.TrimSpace(req.Company); company != "" {
		user.Company = models.StrPtr(company)
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		user.Password = string(hash)
	}

	resp, err := h.joinOrCreate(r, req, user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	log.FromContext(ctx).Info("user signed up", "user", user.ID, "org", resp.OrgID, "joined", resp.Joined)
	utils.WriteSuccessResponse(w, resp)
}

func (h *AuthHandler) joinOrCreate(r *http.Request, req *models.SignupRequest, user *models.User) (*models.SignupResponse, error) {
	ctx := r.Context()

	var org *models.Organization
	if req.OrganizationID != nil && *req.OrganizationID != "" {
		found, err := h.db.GetOrganization(ctx, *req.OrganizationID)
		if err != nil {
			return nil, err
		}
		org = found
	} else {
		company := strings.TrimSpace(req.Company)
		if company == "" {
			return nil, apperr.Validation("company is required when organizationId is absent")
		}
		found, err := h.db.FindOrganizationByName(ctx, company)
		switch {
		case err == nil:
			org = found
		case errors.Is(err, apperr.ErrNotFound):
			org = &models.Organization{ID: h.newID(), Name: company, CreatedAt: h.timestamp()}
			if err := h.db.CreateOrganizationWithAdmin(ctx, org, user); err != nil {
				return nil, err
			}
			return &models.SignupResponse{Success: true, UserID: user.ID, OrgID: org.ID, IsAdmin: true}, nil
		default:
			return nil, err
		}
	}

	user.OrganizationID = org.ID
	user.IsAdmin = false
	if err := h.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &models.SignupResponse{Success: true, UserID: user.ID, OrgID: org.ID, Joined: true}, nil
}

// Login 用户登录
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.LoginRequest](&h.base, w, r)
	if !ok {
		return
	}
	req.Email = database.NormalizeEmail(req.Email)
	if !h.require(w, r, "email", req.Email) {
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// 只有设置了密码的用户才校验密码
	if user.Password != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			h.fail(w, r, apperr.Unauthorized("invalid email or password"))
			return
		}
	}
	h.writeTokens(w, r, user)
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.RefreshTokenRequest](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "refreshToken", req.RefreshToken) {
		return
	}

	claims, err := h.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.db.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = apperr.Unauthorized("user %s no longer exists", claims.UserID)
		}
		h.fail(w, r, err)
		return
	}
	h.writeTokens(w, r, user)
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, r *http.Request, user *models.User) {
	org, err := h.db.GetOrganization(r.Context(), user.OrganizationID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		h.fail(w, r, err)
		return
	}

	access, refresh, expiresIn, err := h.jwt.GenerateTokenPair(user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, models.LoginResponse{
		User:         *user,
		Organization: org,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	})
}

// HealthCheck 健康检查
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":      "ok",
		"service":     "buildsync-backend",
		"environment": h.config.Environment,
		"database":    h.config.DatabaseDriver,
		"timestamp":   h.timestamp(),
	}

	if err := h.db.HealthCheck(r.Context()); err != nil {
		log.FromContext(r.Context()).Error("database health check failed", "err", err)
		response["status"] = "degraded"
		response["db_error"] = err.Error()
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, response)
		return
	}
	utils.WriteSuccessResponse(w, response)
}
