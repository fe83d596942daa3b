package jwt

import (
	"time"

	"challenge-settlement-system/config"

	"github.com/golang-jwt/jwt"
)

// Payload token 中携带的用户信息
type Payload struct {
	UserID uint `json:"user_id"`
	RoleID int  `json:"role_id"` // >=1 为管理员
}

type Claims struct {
	Payload
	jwt.StandardClaims
}

func CreateToken(payload Payload) string {
	now := time.Now()
	claims := Claims{
		Payload: payload,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(config.Get().JWT.AccessExpire) * time.Second).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.Get().JWT.AccessSecret))
	if err != nil {
		return ""
	}
	return token
}

func ParseToken(token string) (*Claims, bool) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Get().JWT.AccessSecret), nil
	})
	if err != nil || !t.Valid {
		return nil, false
	}
	return claims, true
}
