package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/HummaSaeed/TimeTableManager/internal/middleware"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

// schoolID extracts the authenticated school scope set by the JWT middleware.
func schoolID(c *gin.Context) (string, error) {
	value, ok := c.Get(middleware.ContextSchoolID)
	if !ok {
		return "", apperrors.ErrUnauthorized
	}
	id, ok := value.(string)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}
