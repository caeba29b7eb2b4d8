package middleware

import (
	"fmt"

	"fintrack/internal/apperr"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into the 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		util.Error(c, apperr.Internal("panic recovered", fmt.Errorf("%v", recovered)))
	})
}
