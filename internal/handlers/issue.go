package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/access"
	"github.com/issuedesk-dev/issuedesk/internal/activity"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/utils"
	"gorm.io/gorm"
)

type IssueRequest struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	Tag            string `json:"tag" binding:"required"`
	Priority       string `json:"priority" binding:"required"`
	Status         string `json:"status" binding:"required"`
	AssigneeUserID *uint  `json:"assignee_user_id"`
}

type IssueResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Tag            string    `json:"tag"`
	Priority       string    `json:"priority"`
	Status         string    `json:"status"`
	ProjectID      uint      `json:"project_id"`
	AuthorUserID   uint      `json:"author_user_id"`
	AssigneeUserID uint      `json:"assignee_user_id"`
	CreatedTime    time.Time `json:"created_time"`
}

func newIssueResponse(issue models.Issue) IssueResponse {
	return IssueResponse{
		ID:             issue.ID,
		Title:          issue.Title,
		Description:    issue.Description,
		Tag:            issue.Tag,
		Priority:       issue.Priority,
		Status:         issue.Status,
		ProjectID:      issue.ProjectID,
		AuthorUserID:   issue.AuthorUserID,
		AssigneeUserID: issue.AssigneeUserID,
		CreatedTime:    issue.CreatedAt,
	}
}

func ListIssues(ctx *gin.Context) {
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

	query := db.DB.Model(&models.Issue{}).
		Where("project_id = ?", projectID).
		Order("id")

	page, err := utils.Paginate[models.Issue](ctx, query)

	if err != nil {
		log.Printf("Failed to retrieve issues: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	ctx.JSON(http.StatusOK, page.Map(func(issue models.Issue) any {
		return newIssueResponse(issue)
	}))
}

func CreateIssue(ctx *gin.Context) {
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

	var body IssueRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// The requester is always the author; the assignee falls back to the
	// author and must otherwise be a contributor of the project.
	assigneeID := userID

	if body.AssigneeUserID != nil {
		if !access.IsMember(projectID, *body.AssigneeUserID) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assignee must be a contributor of the project"})
			return
		}
		assigneeID = *body.AssigneeUserID
	}

	issue := models.Issue{
		ProjectID:      projectID,
		Title:          body.Title,
		Description:    body.Description,
		Tag:            body.Tag,
		Priority:       body.Priority,
		Status:         body.Status,
		AuthorUserID:   userID,
		AssigneeUserID: assigneeID,
	}

	if err := db.DB.Create(&issue).Error; err != nil {
		log.Printf("Failed to create issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	activity.Record(projectID, userID, activity.IssueCreated, map[string]any{
		"issue_id": issue.ID,
		"title":    issue.Title,
	})

	ctx.JSON(http.StatusCreated, newIssueResponse(issue))
}

func UpdateIssue(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, issueID, err := utils.GetProjectIssueID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project or Issue ID"})
		return
	}

	if err := access.RequireMember(projectID, userID); err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	var issue models.Issue

	err = db.DB.Where("id = ? AND project_id = ?", issueID, projectID).First(&issue).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		log.Printf("Failed to fetch issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !access.CanMutateIssue(userID, issue) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the issue author can modify it"})
		return
	}

	var body IssueRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.AssigneeUserID != nil {
		if !access.IsMember(projectID, *body.AssigneeUserID) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assignee must be a contributor of the project"})
			return
		}
		issue.AssigneeUserID = *body.AssigneeUserID
	}

	issue.Title = body.Title
	issue.Description = body.Description
	issue.Tag = body.Tag
	issue.Priority = body.Priority
	issue.Status = body.Status

	if err := db.DB.Save(&issue).Error; err != nil {
		log.Printf("Failed to update issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	activity.Record(projectID, userID, activity.IssueUpdated, map[string]any{
		"issue_id": issue.ID,
		"title":    issue.Title,
		"status":   issue.Status,
	})

	ctx.JSON(http.StatusOK, newIssueResponse(issue))
}

func DeleteIssue(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, issueID, err := utils.GetProjectIssueID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project or Issue ID"})
		return
	}

	if err := access.RequireMember(projectID, userID); err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	var issue models.Issue

	err = db.DB.Where("id = ? AND project_id = ?", issueID, projectID).First(&issue).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		log.Printf("Failed to fetch issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !access.CanMutateIssue(userID, issue) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the issue author can delete it"})
		return
	}

	if err := db.DB.Delete(&issue).Error; err != nil {
		log.Printf("Failed to delete issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue"})
		return
	}

	activity.Record(projectID, userID, activity.IssueDeleted, map[string]any{
		"issue_id": issue.ID,
		"title":    issue.Title,
	})

	ctx.Status(http.StatusNoContent)
}
