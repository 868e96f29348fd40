package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT 相关配置
const (
	// 会话 Token 有效期，只在握手时校验一次
	SessionTTL = 10 * time.Minute

	tokenIssuer = "foosball-client"
)

// ErrNoToken 请求中没有携带 Bearer Token
var ErrNoToken = errors.New("missing bearer token")

// Claims 定义 JWT Claims
type Claims struct {
	ClientID string `json:"client_id"`
	Side     string `json:"side,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken 生成会话 Token
func GenerateSessionToken(secret []byte, clientID, side string) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := Claims{
		ClientID: clientID,
		Side:     side,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifySessionToken 验证并解析 Token
func VerifySessionToken(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// BearerHeader 构造握手请求头，token 为空时返回 nil
func BearerHeader(token string) http.Header {
	if token == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

// TokenFromRequest 从 Authorization 头中取出 Token
func TokenFromRequest(r *http.Request) (string, error) {
	value := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(value, "Bearer ")
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
