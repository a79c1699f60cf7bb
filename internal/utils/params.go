package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

func pathID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, fmt.Errorf("%s not found", name)
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return uint(id), nil
}

func GetProjectID(ctx *gin.Context) (uint, error) {
	return pathID(ctx, "project_id")
}

func GetIssueID(ctx *gin.Context) (uint, error) {
	return pathID(ctx, "issue_id")
}

func GetCommentID(ctx *gin.Context) (uint, error) {
	return pathID(ctx, "comment_id")
}

func GetContributorID(ctx *gin.Context) (uint, error) {
	return pathID(ctx, "contributor_id")
}

func GetRuleID(ctx *gin.Context) (uint, error) {
	return pathID(ctx, "rule_id")
}

func GetProjectIssueID(ctx *gin.Context) (uint, uint, error) {
	projectID, err := GetProjectID(ctx)

	if err != nil {
		return 0, 0, err
	}

	issueID, err := GetIssueID(ctx)

	if err != nil {
		return 0, 0, err
	}

	return projectID, issueID, nil
}
