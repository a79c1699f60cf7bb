package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/access"
	"github.com/issuedesk-dev/issuedesk/internal/activity"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
}

type UpdateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
}

// ProjectResponse is the list/create shape: description stays write-only
// until the detail route.
type ProjectResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	AuthorUserID *uint  `json:"author_user_id"`
}

type ProjectDetailResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	AuthorUserID *uint  `json:"author_user_id"`
}

func newProjectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:           project.ID,
		Title:        project.Title,
		Type:         project.Type,
		AuthorUserID: project.AuthorUserID,
	}
}

func newProjectDetailResponse(project models.Project) ProjectDetailResponse {
	return ProjectDetailResponse{
		ID:           project.ID,
		Title:        project.Title,
		Description:  project.Description,
		Type:         project.Type,
		AuthorUserID: project.AuthorUserID,
	}
}

// ensureOwnerMembership inserts the author's OWNER row. The unique
// (project_id, user_id) index plus ON CONFLICT DO NOTHING makes it
// idempotent without a read-then-write window.
func ensureOwnerMembership(tx *gorm.DB, projectID, userID uint) error {
	contributor := models.Contributor{
		ProjectID:  projectID,
		UserID:     userID,
		Permission: models.PermissionOwner,
		Role:       "author",
	}

	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&contributor).Error
}

func CreateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project := models.Project{
		Title:        body.Title,
		Description:  body.Description,
		Type:         body.Type,
		AuthorUserID: &userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		return ensureOwnerMembership(tx, project.ID, userID)
	})

	if err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	activity.Record(project.ID, userID, activity.ProjectCreated, map[string]any{"title": project.Title})

	ctx.JSON(http.StatusCreated, newProjectResponse(project))
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Model(&models.Project{}).
		Joins("JOIN contributors ON contributors.project_id = projects.id").
		Where("contributors.user_id = ?", userID).
		Order("projects.id DESC")

	page, err := utils.Paginate[models.Project](ctx, query)

	if err != nil {
		log.Printf("Failed to retrieve projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	ctx.JSON(http.StatusOK, page.Map(func(project models.Project) any {
		return newProjectResponse(project)
	}))
}

func GetProject(ctx *gin.Context) {
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

	project, err := access.VisibleProject(projectID, userID)

	if err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	ctx.JSON(http.StatusOK, newProjectDetailResponse(project))
}

func UpdateProject(ctx *gin.Context) {
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

	project, err := access.VisibleProject(projectID, userID)

	if err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	if !access.CanMutateProject(userID, project) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project author can modify it"})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project.Title = body.Title
	project.Description = body.Description
	project.Type = body.Type

	if err := db.DB.Save(&project).Error; err != nil {
		log.Printf("Failed to update project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	ctx.JSON(http.StatusOK, newProjectDetailResponse(project))
}

func DeleteProject(ctx *gin.Context) {
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

	project, err := access.VisibleProject(projectID, userID)

	if err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	if !access.CanMutateProject(userID, project) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project author can delete it"})
		return
	}

	if err := db.DB.Delete(&project).Error; err != nil {
		log.Printf("Failed to delete project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
