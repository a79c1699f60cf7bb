package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/internal/access"
)

// respondAccessError maps authorization-engine sentinels onto HTTP statuses.
// notFound carries the resource-specific 404 message.
func respondAccessError(ctx *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, access.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, access.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	default:
		log.Printf("Access check failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// MethodNotAllowed is registered on routes whose method set is deliberately
// restricted, such as PATCH on detail routes. It answers before any
// existence or permission lookup.
func MethodNotAllowed(ctx *gin.Context) {
	ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": fmt.Sprintf("Method %q not allowed", ctx.Request.Method)})
}
