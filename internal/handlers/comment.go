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

type CommentRequest struct {
	Description string `json:"description" binding:"required"`
}

type CommentResponse struct {
	ID           uint      `json:"id"`
	IssueID      uint      `json:"issue_id"`
	AuthorUserID uint      `json:"author_user_id"`
	Description  string    `json:"description"`
	CreatedTime  time.Time `json:"created_time"`
}

func newCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:           comment.ID,
		IssueID:      comment.IssueID,
		AuthorUserID: comment.AuthorUserID,
		Description:  comment.Description,
		CreatedTime:  comment.CreatedAt,
	}
}

func ListComments(ctx *gin.Context) {
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

	if err := db.DB.Where("id = ? AND project_id = ?", issueID, projectID).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		log.Printf("Failed to fetch issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	query := db.DB.Model(&models.Comment{}).
		Where("issue_id = ?", issueID).
		Order("id")

	page, err := utils.Paginate[models.Comment](ctx, query)

	if err != nil {
		log.Printf("Failed to retrieve comments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	ctx.JSON(http.StatusOK, page.Map(func(comment models.Comment) any {
		return newCommentResponse(comment)
	}))
}

func CreateComment(ctx *gin.Context) {
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

	if err := db.DB.Where("id = ? AND project_id = ?", issueID, projectID).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		log.Printf("Failed to fetch issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var body CommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Description is required"})
		return
	}

	comment := models.Comment{
		IssueID:      issueID,
		AuthorUserID: userID,
		Description:  body.Description,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to create comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	activity.Record(projectID, userID, activity.CommentCreated, map[string]any{
		"issue_id":   issueID,
		"comment_id": comment.ID,
	})

	ctx.JSON(http.StatusCreated, newCommentResponse(comment))
}

func GetComment(ctx *gin.Context) {
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

	commentID, err := utils.GetCommentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Comment ID"})
		return
	}

	if err := access.RequireMember(projectID, userID); err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	comment, ok := findComment(ctx, projectID, issueID, commentID)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, newCommentResponse(comment))
}

func UpdateComment(ctx *gin.Context) {
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

	commentID, err := utils.GetCommentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Comment ID"})
		return
	}

	comment, ok := findComment(ctx, projectID, issueID, commentID)

	if !ok {
		return
	}

	if !access.CanMutateComment(userID, comment) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the comment author can modify it"})
		return
	}

	var body CommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Description is required"})
		return
	}

	comment.Description = body.Description

	if err := db.DB.Save(&comment).Error; err != nil {
		log.Printf("Failed to update comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	activity.Record(projectID, userID, activity.CommentUpdated, map[string]any{
		"issue_id":   issueID,
		"comment_id": comment.ID,
	})

	ctx.JSON(http.StatusOK, newCommentResponse(comment))
}

func DeleteComment(ctx *gin.Context) {
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

	commentID, err := utils.GetCommentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Comment ID"})
		return
	}

	comment, ok := findComment(ctx, projectID, issueID, commentID)

	if !ok {
		return
	}

	if !access.CanMutateComment(userID, comment) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the comment author can delete it"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		log.Printf("Failed to delete comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	activity.Record(projectID, userID, activity.CommentDeleted, map[string]any{
		"issue_id":   issueID,
		"comment_id": comment.ID,
	})

	ctx.Status(http.StatusNoContent)
}

// findComment resolves the nested path ids to a comment, writing the 404
// response itself when any link in the chain is missing. The issue must
// belong to the project and the comment to the issue.
func findComment(ctx *gin.Context, projectID, issueID, commentID uint) (models.Comment, bool) {
	var issue models.Issue

	if err := db.DB.Where("id = ? AND project_id = ?", issueID, projectID).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return models.Comment{}, false
		}
		log.Printf("Failed to fetch issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return models.Comment{}, false
	}

	var comment models.Comment

	if err := db.DB.Where("id = ? AND issue_id = ?", commentID, issueID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return models.Comment{}, false
		}
		log.Printf("Failed to fetch comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return models.Comment{}, false
	}

	return comment, true
}
