package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nep-timetable-api/internal/middleware"
	"github.com/noah-isme/nep-timetable-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// requesterID names the caller in logs. Anonymous requests are allowed on read routes.
func requesterID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return "anonymous"
}
