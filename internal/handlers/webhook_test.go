package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/services"
	"github.com/issuedesk-dev/issuedesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRuleLifecycle(t *testing.T) {
	api := newAPI(t)

	owner := testutil.CreateUser(t, "owner@example.com")
	project := testutil.CreateProject(t, owner, "Tracker")

	path := fmt.Sprintf("/projects/%d/notifications", project.ID)
	token := testutil.AccessToken(t, owner)

	recorder := testutil.PerformRequest(t, api, http.MethodPost, path, gin.H{
		"trigger_type": "issue_created",
		"channel":      "discord",
		"config":       gin.H{"url": "https://discord.example.com/webhook"},
	}, token)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var body map[string]any
	testutil.DecodeJSON(t, recorder, &body)
	assert.Equal(t, "issue_created", body["trigger_type"])
	assert.Equal(t, "discord", body["channel"])
	assert.Equal(t, true, body["is_active"])

	config, ok := body["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://discord.example.com/webhook", config["url"])

	recorder = testutil.PerformRequest(t, api, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, recorder.Code)

	var page pageEnvelope
	testutil.DecodeJSON(t, recorder, &page)
	require.EqualValues(t, 1, page.Count)

	ruleID := page.Results[0]["id"]

	recorder = testutil.PerformRequest(t, api, http.MethodDelete, fmt.Sprintf("%s/%v", path, ruleID), nil, token)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = testutil.PerformRequest(t, api, http.MethodGet, path, nil, token)
	testutil.DecodeJSON(t, recorder, &page)
	assert.EqualValues(t, 0, page.Count)
}

func TestNotificationRuleValidation(t *testing.T) {
	api := newAPI(t)

	owner := testutil.CreateUser(t, "owner@example.com")
	member := testutil.CreateUser(t, "member@example.com")

	project := testutil.CreateProject(t, owner, "Tracker")
	testutil.AddContributor(t, project, member, models.PermissionContributor)

	path := fmt.Sprintf("/projects/%d/notifications", project.ID)
	token := testutil.AccessToken(t, owner)

	recorder := testutil.PerformRequest(t, api, http.MethodPost, path, gin.H{
		"trigger_type": "issue_exploded",
		"channel":      "discord",
		"config":       gin.H{"url": "https://discord.example.com/webhook"},
	}, token)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Unknown trigger type", errorMessage(t, recorder))

	recorder = testutil.PerformRequest(t, api, http.MethodPost, path, gin.H{
		"trigger_type": "issue_created",
		"channel":      "pager",
		"config":       gin.H{"url": "https://pager.example.com"},
	}, token)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Channel must be discord, slack or webhook", errorMessage(t, recorder))

	recorder = testutil.PerformRequest(t, api, http.MethodPost, path, gin.H{
		"trigger_type": "issue_created",
		"channel":      "webhook",
		"config":       gin.H{},
	}, token)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Config must include a url", errorMessage(t, recorder))

	// Rules are owner-only, like the contributor roster.
	recorder = testutil.PerformRequest(t, api, http.MethodPost, path, gin.H{
		"trigger_type": "issue_created",
		"channel":      "webhook",
		"config":       gin.H{"url": "https://hooks.example.com"},
	}, testutil.AccessToken(t, member))
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = testutil.PerformRequest(t, api, http.MethodGet, path, nil, testutil.AccessToken(t, member))
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// An explicit is_active false is preserved.
	recorder = testutil.PerformRequest(t, api, http.MethodPost, path, gin.H{
		"trigger_type": "issue_created",
		"channel":      "webhook",
		"config":       gin.H{"url": "https://hooks.example.com"},
		"is_active":    false,
	}, token)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var body map[string]any
	testutil.DecodeJSON(t, recorder, &body)
	assert.Equal(t, false, body["is_active"])
}

func TestDeleteNotificationRuleScopedToProject(t *testing.T) {
	api := newAPI(t)

	owner := testutil.CreateUser(t, "owner@example.com")

	first := testutil.CreateProject(t, owner, "First")
	second := testutil.CreateProject(t, owner, "Second")

	token := testutil.AccessToken(t, owner)

	recorder := testutil.PerformRequest(t, api, http.MethodPost, fmt.Sprintf("/projects/%d/notifications", first.ID), gin.H{
		"trigger_type": "issue_created",
		"channel":      "webhook",
		"config":       gin.H{"url": "https://hooks.example.com"},
	}, token)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var body map[string]any
	testutil.DecodeJSON(t, recorder, &body)

	recorder = testutil.PerformRequest(t, api, http.MethodDelete, fmt.Sprintf("/projects/%d/notifications/%v", second.ID, body["id"]), nil, token)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Notification rule not found", errorMessage(t, recorder))
}

func TestIssueCreationDeliversWebhook(t *testing.T) {
	api := newAPI(t)

	owner := testutil.CreateUser(t, "owner@example.com")
	project := testutil.CreateProject(t, owner, "Tracker")
	token := testutil.AccessToken(t, owner)

	type delivery struct {
		action string
		event  services.WebhookEvent
	}

	received := make(chan delivery, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event services.WebhookEvent
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&event))

		received <- delivery{action: r.Header.Get("X-Issuedesk-Event"), event: event}
	}))
	defer server.Close()

	recorder := testutil.PerformRequest(t, api, http.MethodPost, fmt.Sprintf("/projects/%d/notifications", project.ID), gin.H{
		"trigger_type": "issue_created",
		"channel":      "webhook",
		"config":       gin.H{"url": server.URL},
	}, token)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = testutil.PerformRequest(t, api, http.MethodPost, fmt.Sprintf("/projects/%d/issues", project.ID), issueBody("Crash on save"), token)
	require.Equal(t, http.StatusCreated, recorder.Code)

	select {
	case got := <-received:
		assert.Equal(t, "issue_created", got.action)
		assert.Equal(t, "issue_created", got.event.Action)
		assert.Equal(t, "Tracker", got.event.Project)
		assert.Equal(t, project.ID, got.event.ProjectID)
		assert.Equal(t, owner.ID, got.event.ActorUserID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a webhook delivery")
	}
}
