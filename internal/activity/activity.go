// Package activity records every project mutation as an append-only event,
// pushes it to connected websocket clients and hands it to the notification
// dispatcher.
package activity

import (
	"encoding/json"
	"log"

	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/services"
	"gorm.io/datatypes"
)

const (
	ProjectCreated     = "project_created"
	ContributorAdded   = "contributor_added"
	ContributorRemoved = "contributor_removed"
	IssueCreated       = "issue_created"
	IssueUpdated       = "issue_updated"
	IssueDeleted       = "issue_deleted"
	CommentCreated     = "comment_created"
	CommentUpdated     = "comment_updated"
	CommentDeleted     = "comment_deleted"
)

func ValidAction(action string) bool {
	switch action {
	case ProjectCreated,
		ContributorAdded, ContributorRemoved,
		IssueCreated, IssueUpdated, IssueDeleted,
		CommentCreated, CommentUpdated, CommentDeleted:
		return true
	}
	return false
}

// Record appends an event and fans it out to websocket clients and matching
// notification rules. Failures are logged and swallowed: recording activity
// must never fail the mutation that caused it.
func Record(projectID, actorID uint, action string, payload map[string]any) {
	body, err := json.Marshal(payload)

	if err != nil {
		log.Printf("Failed to marshal activity payload: %v", err)
		body = nil
	}

	event := models.ActivityEvent{
		ProjectID:   projectID,
		ActorUserID: actorID,
		Action:      action,
		Payload:     datatypes.JSON(body),
	}

	if err := db.DB.Create(&event).Error; err != nil {
		log.Printf("Failed to record %s activity for project %d: %v", action, projectID, err)
		return
	}

	broadcast(event)
	services.DispatchEvent(event)
}
