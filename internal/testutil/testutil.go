// Package testutil wires an in-memory SQLite database into the global db
// handle and provides the fixtures the API tests share. The pure-Go sqlite
// driver keeps the suite free of cgo and external services.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/auth"
	"github.com/issuedesk-dev/issuedesk/internal/identity"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const Password = "s3cretpass!"

func init() {
	gin.SetMode(gin.TestMode)

	os.Setenv("JWT_SECRET", "issuedesk-test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		panic(err)
	}
}

// OpenTestDB points db.DB at a fresh in-memory database with foreign keys
// enforced and the schema migrated. The single connection keeps the whole
// pool on the same in-memory instance.
func OpenTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db.DB = gdb
	require.NoError(t, db.MigrateDatabase())

	t.Cleanup(func() {
		sqlDB.Close()
	})
}

func CreateUser(t *testing.T, email string) models.User {
	t.Helper()

	user, err := identity.CreateUser(email, Password, "Test", "User")
	require.NoError(t, err)

	return user
}

// CreateProject inserts a project together with its author's OWNER row, the
// same pair the create endpoint persists.
func CreateProject(t *testing.T, author models.User, title string) models.Project {
	t.Helper()

	project := models.Project{
		Title:        title,
		Description:  "A project used in tests",
		Type:         "back-end",
		AuthorUserID: &author.ID,
	}
	require.NoError(t, db.DB.Create(&project).Error)

	contributor := models.Contributor{
		ProjectID:  project.ID,
		UserID:     author.ID,
		Permission: models.PermissionOwner,
		Role:       "author",
	}
	require.NoError(t, db.DB.Create(&contributor).Error)

	return project
}

func AddContributor(t *testing.T, project models.Project, user models.User, permission string) models.Contributor {
	t.Helper()

	contributor := models.Contributor{
		ProjectID:  project.ID,
		UserID:     user.ID,
		Permission: permission,
		Role:       "tester",
	}
	require.NoError(t, db.DB.Create(&contributor).Error)

	return contributor
}

func CreateIssue(t *testing.T, project models.Project, author models.User, title string) models.Issue {
	t.Helper()

	issue := models.Issue{
		ProjectID:      project.ID,
		Title:          title,
		Description:    "An issue used in tests",
		Tag:            "BUG",
		Priority:       "HIGH",
		Status:         "To Do",
		AuthorUserID:   author.ID,
		AssigneeUserID: author.ID,
	}
	require.NoError(t, db.DB.Create(&issue).Error)

	return issue
}

func CreateComment(t *testing.T, issue models.Issue, author models.User, description string) models.Comment {
	t.Helper()

	comment := models.Comment{
		IssueID:      issue.ID,
		AuthorUserID: author.ID,
		Description:  description,
	}
	require.NoError(t, db.DB.Create(&comment).Error)

	return comment
}

func AccessToken(t *testing.T, user models.User) string {
	t.Helper()

	tokens, err := auth.GenerateTokenPair(user.ID, user.Email)
	require.NoError(t, err)

	return tokens.Access
}

// PerformRequest runs one request through the handler and returns the
// recorder. A nil body sends no payload; a non-empty token becomes a Bearer
// header.
func PerformRequest(t *testing.T, handler http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	return recorder
}

// DecodeJSON unmarshals the recorder body into out, failing the test on
// malformed JSON.
func DecodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}
