package jwt

import (
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"tutoros/backend/config"
)

const testSecret = "test-secret-key-for-unit-testing-2026"

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      testSecret,
		Issuer:         "tutoros",
		AccessTokenTTL: 15 * time.Minute,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("tutor-1", "tenant-1", "tutor")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}
	if claims.UserID != "tutor-1" {
		t.Errorf("期望 UserID=tutor-1，实际=%s", claims.UserID)
	}
	if claims.TenantID != "tenant-1" {
		t.Errorf("期望 TenantID=tenant-1，实际=%s", claims.TenantID)
	}
	if claims.Role != "tutor" {
		t.Errorf("期望 Role=tutor，实际=%s", claims.Role)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
	if ttl := claims.RemainingTTL(time.Now()); ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("剩余有效期应在 (0, 15m] 内，实际=%v", ttl)
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := newTestManager()
	claims := Claims{
		UserID:   "u",
		TenantID: "t",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "tutoros",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际 %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := newTestManager().GenerateAccessToken("u", "t", "tutor")
	other := NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-0123456789", Issuer: "tutoros"})
	if _, err := other.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际 %v", err)
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	m := NewManager(&config.AuthConfig{JWTSecret: testSecret, Issuer: "someone-else"})
	token, _ := m.GenerateAccessToken("u", "t", "tutor")
	if _, err := newTestManager().ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("签发方不符应返回 ErrTokenInvalid，实际 %v", err)
	}
}

func TestParseToken_MissingTenant(t *testing.T) {
	m := newTestManager()
	token, _ := m.GenerateAccessToken("u", "", "tutor")
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTenantRequired) {
		t.Errorf("缺少租户应返回 ErrTenantRequired，实际 %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := newTestManager().ParseToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际 %v", err)
	}
}
