// Package access is the authorization engine. Every decision takes the
// acting user explicitly and is evaluated against the database, never against
// request state. Existence is always checked before permission, so a caller
// probing a resource it cannot see learns nothing beyond "not found".
package access

import (
	"errors"

	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("permission denied")
)

// IsMember reports whether the user holds any contributor row (OWNER or
// CONTRIBUTOR) in the project.
func IsMember(projectID, userID uint) bool {
	var count int64

	err := db.DB.Model(&models.Contributor{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error

	return err == nil && count > 0
}

// IsOwner reports whether the user holds an OWNER contributor row in the
// project.
func IsOwner(projectID, userID uint) bool {
	var count int64

	err := db.DB.Model(&models.Contributor{}).
		Where("project_id = ? AND user_id = ? AND permission = ?", projectID, userID, models.PermissionOwner).
		Count(&count).Error

	return err == nil && count > 0
}

// CanViewProject gates read access: any contributor row, OWNER or
// CONTRIBUTOR, is enough to see the project.
func CanViewProject(userID uint, project models.Project) bool {
	return IsMember(project.ID, userID)
}

// CanMutateProject gates project update and delete on authorship, not on the
// OWNER role: an owner who is not the author may read but not mutate.
func CanMutateProject(userID uint, project models.Project) bool {
	return project.AuthorUserID != nil && *project.AuthorUserID == userID
}

// CanMutateIssue requires both authorship and current membership, so an
// author removed from the project loses mutation rights on their issues.
func CanMutateIssue(userID uint, issue models.Issue) bool {
	return issue.AuthorUserID == userID && IsMember(issue.ProjectID, userID)
}

// CanMutateComment is an authorship check only.
func CanMutateComment(userID uint, comment models.Comment) bool {
	return comment.AuthorUserID == userID
}

// VisibleProject loads a project for the detail routes. Projects the user is
// not a member of are reported as ErrNotFound, indistinguishable from ids
// that never existed.
func VisibleProject(projectID, userID uint) (models.Project, error) {
	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}

	if !CanViewProject(userID, project) {
		return models.Project{}, ErrNotFound
	}

	return project, nil
}

// RequireMember gates nested project routes: ErrNotFound when the project id
// does not exist, then ErrForbidden when the user is not a member.
func RequireMember(projectID, userID uint) error {
	if err := projectExists(projectID); err != nil {
		return err
	}

	if !IsMember(projectID, userID) {
		return ErrForbidden
	}

	return nil
}

// RequireOwner gates contributor and notification-rule management:
// ErrNotFound when the project id does not exist, then ErrForbidden unless
// the user holds the OWNER permission.
func RequireOwner(projectID, userID uint) error {
	if err := projectExists(projectID); err != nil {
		return err
	}

	if !IsOwner(projectID, userID) {
		return ErrForbidden
	}

	return nil
}

func projectExists(projectID uint) error {
	var count int64

	err := db.DB.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		return ErrNotFound
	}

	return nil
}
