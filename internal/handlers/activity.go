package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/access"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/utils"
	"gorm.io/datatypes"
)

type ActivityEventResponse struct {
	ID          uint           `json:"id"`
	ProjectID   uint           `json:"project_id"`
	ActorUserID uint           `json:"actor_user_id"`
	Action      string         `json:"action"`
	Payload     datatypes.JSON `json:"payload"`
	CreatedTime time.Time      `json:"created_time"`
}

// ListActivity returns the project's event feed, newest first.
func ListActivity(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project ID"})
		return
	}

	if err := access.RequireMember(projectID, userID); err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	query := db.DB.Model(&models.ActivityEvent{}).
		Where("project_id = ?", projectID).
		Order("id DESC")

	page, err := utils.Paginate[models.ActivityEvent](ctx, query)

	if err != nil {
		log.Printf("Failed to retrieve activity: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activity"})
		return
	}

	ctx.JSON(http.StatusOK, page.Map(func(event models.ActivityEvent) any {
		return ActivityEventResponse{
			ID:          event.ID,
			ProjectID:   event.ProjectID,
			ActorUserID: event.ActorUserID,
			Action:      event.Action,
			Payload:     event.Payload,
			CreatedTime: event.CreatedAt,
		}
	}))
}
