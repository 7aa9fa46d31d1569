package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"peerlearn.app/server/internal/log"
	"peerlearn.app/server/pkg/apperror"
)

// GetAccountID retrieves the authenticated account ID from the context
func GetAccountID(c *gin.Context) (uuid.UUID, error) {
	idStr, exists := c.Get("account_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	accountID, err := uuid.Parse(idStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return accountID, nil
}

// Error writes a standardized error response
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		log.L().Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
