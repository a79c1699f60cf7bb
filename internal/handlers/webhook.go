package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/access"
	"github.com/issuedesk-dev/issuedesk/internal/activity"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/types"
	"github.com/issuedesk-dev/issuedesk/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateNotificationRuleRequest struct {
	TriggerType string           `json:"trigger_type" binding:"required"`
	Channel     string           `json:"channel" binding:"required"`
	Config      types.RuleConfig `json:"config" binding:"required"`
	IsActive    *bool            `json:"is_active"`
}

type NotificationRuleResponse struct {
	ID          uint             `json:"id"`
	ProjectID   uint             `json:"project_id"`
	TriggerType string           `json:"trigger_type"`
	Channel     string           `json:"channel"`
	IsActive    bool             `json:"is_active"`
	Config      types.RuleConfig `json:"config"`
}

func newNotificationRuleResponse(rule models.NotificationRule) NotificationRuleResponse {
	var config types.RuleConfig

	if len(rule.Config) > 0 {
		if err := json.Unmarshal(rule.Config, &config); err != nil {
			log.Printf("Invalid config on notification rule %d: %v", rule.ID, err)
		}
	}

	return NotificationRuleResponse{
		ID:          rule.ID,
		ProjectID:   rule.ProjectID,
		TriggerType: rule.TriggerType,
		Channel:     rule.Channel,
		IsActive:    rule.IsActive,
		Config:      config,
	}
}

func ListNotificationRules(ctx *gin.Context) {
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

	query := db.DB.Model(&models.NotificationRule{}).
		Where("project_id = ?", projectID).
		Order("id")

	page, err := utils.Paginate[models.NotificationRule](ctx, query)

	if err != nil {
		log.Printf("Failed to retrieve notification rules: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification rules"})
		return
	}

	ctx.JSON(http.StatusOK, page.Map(func(rule models.NotificationRule) any {
		return newNotificationRuleResponse(rule)
	}))
}

func CreateNotificationRule(ctx *gin.Context) {
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

	var body CreateNotificationRuleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !activity.ValidAction(body.TriggerType) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown trigger type"})
		return
	}

	if !models.ValidChannel(body.Channel) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Channel must be discord, slack or webhook"})
		return
	}

	if body.Config.URL == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Config must include a url"})
		return
	}

	config, err := json.Marshal(body.Config)

	if err != nil {
		log.Printf("Failed to marshal rule config: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	isActive := true

	if body.IsActive != nil {
		isActive = *body.IsActive
	}

	rule := models.NotificationRule{
		ProjectID:   projectID,
		UserID:      userID,
		TriggerType: body.TriggerType,
		Channel:     body.Channel,
		IsActive:    isActive,
		Config:      datatypes.JSON(config),
	}

	if err := db.DB.Create(&rule).Error; err != nil {
		log.Printf("Failed to create notification rule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification rule"})
		return
	}

	ctx.JSON(http.StatusCreated, newNotificationRuleResponse(rule))
}

func DeleteNotificationRule(ctx *gin.Context) {
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

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Rule ID"})
		return
	}

	if err := access.RequireOwner(projectID, userID); err != nil {
		respondAccessError(ctx, err, "Project not found")
		return
	}

	var rule models.NotificationRule

	err = db.DB.Where("id = ? AND project_id = ?", ruleID, projectID).First(&rule).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification rule not found"})
			return
		}
		log.Printf("Failed to fetch notification rule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Delete(&rule).Error; err != nil {
		log.Printf("Failed to delete notification rule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification rule"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
