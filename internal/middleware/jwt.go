package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
	"github.com/HummaSaeed/TimeTableManager/pkg/config"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
	"github.com/HummaSaeed/TimeTableManager/pkg/response"
)

const (
	ContextSchoolID  = "school_id"
	ContextAccountID = "account_id"
)

// JWTAuth validates the bearer token and stores the school scope on the
// request context.
func JWTAuth(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		claims := &models.JWTClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(ContextSchoolID, claims.SchoolID)
		c.Set(ContextAccountID, claims.Subject)
		c.Next()
	}
}
