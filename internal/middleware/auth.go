package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pinewood/booking-api/internal/config"
)

// AdminAuth guards the admin route group. Two credentials are accepted:
// a bearer JWT signed with the configured secret (issued by the practice's
// identity provider, outside this service) or the static admin API key
// checked against its bcrypt hash.
type AdminAuth struct {
	cfg config.AdminConfig
}

func NewAdminAuth(cfg config.AdminConfig) *AdminAuth {
	return &AdminAuth{cfg: cfg}
}

func (a *AdminAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-Key"); key != "" && a.cfg.APIKeyHash != "" {
			if bcrypt.CompareHashAndPassword([]byte(a.cfg.APIKeyHash), []byte(key)) == nil {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") && a.cfg.JWTSecret != "" {
			token := strings.TrimPrefix(header, "Bearer ")
			if a.verifyJWT(token) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "unauthorized",
		})
	}
}

func (a *AdminAuth) verifyJWT(tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.cfg.JWTSecret), nil
	})
	return err == nil && token.Valid
}
