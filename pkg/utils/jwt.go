package utils

import (
	"fmt"
	"time"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// JWTService JWT服务
type JWTService struct {
	secretKey []byte
	now       func() time.Time
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

func (j *JWTService) sign(u *models.User, kind string, ttl time.Duration) (string, int64, error) {
	now := j.now()
	expiry := now.Add(ttl)
	claims := &models.TokenClaims{
		UserID:         u.ID,
		Email:          u.Email,
		OrganizationID: u.OrganizationID,
		Type:           kind,
		Exp:            expiry.Unix(),
		Iat:            now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate %s token: %w", kind, err)
	}
	return token, expiry.Unix(), nil
}

// GenerateTokenPair 生成访问令牌和刷新令牌对
func (j *JWTService) GenerateTokenPair(u *models.User) (accessToken, refreshToken string, expiresIn int64, err error) {
	accessToken, expiresIn, err = j.sign(u, tokenAccess, accessTokenTTL)
	if err != nil {
		return "", "", 0, err
	}
	refreshToken, _, err = j.sign(u, tokenRefresh, refreshTokenTTL)
	if err != nil {
		return "", "", 0, err
	}
	return accessToken, refreshToken, expiresIn, nil
}

// ValidateToken 验证令牌
func (j *JWTService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, apperr.Unauthorized("invalid token: %v", err)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized("invalid token claims")
	}
	return claims, nil
}

// ValidateAccessToken 验证访问令牌
func (j *JWTService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	return j.validateKind(tokenString, tokenAccess)
}

// ValidateRefreshToken 验证刷新令牌
func (j *JWTService) ValidateRefreshToken(tokenString string) (*models.TokenClaims, error) {
	return j.validateKind(tokenString, tokenRefresh)
}

func (j *JWTService) validateKind(tokenString, kind string) (*models.TokenClaims, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != kind {
		return nil, apperr.Unauthorized("invalid token type: expected %s, got %s", kind, claims.Type)
	}
	return claims, nil
}
