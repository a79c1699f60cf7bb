package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/access"
	"github.com/issuedesk-dev/issuedesk/internal/activity"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/utils"
	"gorm.io/gorm"
)

type AddContributorRequest struct {
	UserID     uint   `json:"user_id" binding:"required"`
	Permission string `json:"permission" binding:"required"`
	Role       string `json:"role"`
}

type ContributorResponse struct {
	ID         uint   `json:"id"`
	UserID     uint   `json:"user_id"`
	ProjectID  uint   `json:"project_id"`
	Permission string `json:"permission"`
	Role       string `json:"role"`
}

func newContributorResponse(contributor models.Contributor) ContributorResponse {
	return ContributorResponse{
		ID:         contributor.ID,
		UserID:     contributor.UserID,
		ProjectID:  contributor.ProjectID,
		Permission: contributor.Permission,
		Role:       contributor.Role,
	}
}

func ListContributors(ctx *gin.Context) {
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

	if err := access.RequireOwner(projectID, userID); err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	query := db.DB.Model(&models.Contributor{}).
		Where("project_id = ?", projectID).
		Order("id")

	page, err := utils.Paginate[models.Contributor](ctx, query)

	if err != nil {
		log.Printf("Failed to retrieve contributors: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contributors"})
		return
	}

	ctx.JSON(http.StatusOK, page.Map(func(contributor models.Contributor) any {
		return newContributorResponse(contributor)
	}))
}

func AddContributor(ctx *gin.Context) {
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

	if err := access.RequireOwner(projectID, userID); err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	var body AddContributorRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !models.ValidPermission(body.Permission) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Permission must be OWNER or CONTRIBUTOR"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, body.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "User does not exist"})
			return
		}
		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	contributor := models.Contributor{
		ProjectID:  projectID,
		UserID:     body.UserID,
		Permission: body.Permission,
		Role:       body.Role,
	}

	if err := db.DB.Create(&contributor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "User is already a contributor of this project"})
			return
		}
		log.Printf("Failed to add contributor: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add contributor"})
		return
	}

	activity.Record(projectID, userID, activity.ContributorAdded, map[string]any{
		"user_id":    contributor.UserID,
		"permission": contributor.Permission,
	})

	ctx.JSON(http.StatusCreated, newContributorResponse(contributor))
}

func RemoveContributor(ctx *gin.Context) {
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

	contributorID, err := utils.GetContributorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Contributor ID"})
		return
	}

	if err := access.RequireOwner(projectID, userID); err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	var contributor models.Contributor

	err = db.DB.Where("id = ? AND project_id = ?", contributorID, projectID).First(&contributor).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Contributor not found"})
			return
		}
		log.Printf("Failed to fetch contributor: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// OWNER rows are not removable through the API, so a project always
	// keeps at least its author's membership.
	if contributor.Permission == models.PermissionOwner {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Project owners cannot be removed"})
		return
	}

	if err := db.DB.Delete(&contributor).Error; err != nil {
		log.Printf("Failed to remove contributor: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove contributor"})
		return
	}

	activity.Record(projectID, userID, activity.ContributorRemoved, map[string]any{
		"user_id": contributor.UserID,
	})

	ctx.Status(http.StatusNoContent)
}
