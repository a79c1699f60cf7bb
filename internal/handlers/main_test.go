package handlers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/router"
	"github.com/issuedesk-dev/issuedesk/internal/testutil"
	"github.com/stretchr/testify/require"
)

// newAPI boots a fresh database and the full route table, so every test goes
// through the same middleware chain as production traffic.
func newAPI(t *testing.T) *gin.Engine {
	t.Helper()

	testutil.OpenTestDB(t)

	return router.NewRouter()
}

// pageEnvelope decodes paginated list bodies without committing to one
// result shape.
type pageEnvelope struct {
	Count    int64            `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []map[string]any `json:"results"`
}

func errorMessage(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	testutil.DecodeJSON(t, recorder, &body)

	return body["error"]
}

func deactivate(t *testing.T, userID uint) {
	t.Helper()

	require.NoError(t, db.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_active", false).Error)
}
