package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDescribeAction(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{"issue_created", "Issue created"},
		{"contributor_removed", "Contributor removed"},
		{"comment_updated", "Comment updated"},
		{"project_created", "Project created"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DescribeAction(tt.action))
	}
}

func TestActionColor(t *testing.T) {
	assert.Equal(t, ColorGreen, actionColor("issue_created"))
	assert.Equal(t, ColorGreen, actionColor("contributor_added"))
	assert.Equal(t, ColorOrange, actionColor("issue_updated"))
	assert.Equal(t, ColorRed, actionColor("issue_deleted"))
	assert.Equal(t, ColorRed, actionColor("contributor_removed"))

	assert.Equal(t, "good", slackColor("comment_created"))
	assert.Equal(t, "warning", slackColor("comment_updated"))
	assert.Equal(t, "danger", slackColor("comment_deleted"))
}

func TestPayloadPairs(t *testing.T) {
	event := models.ActivityEvent{Payload: datatypes.JSON(`{"title":"Crash on save","issue_id":7}`)}

	pairs := payloadPairs(event)
	require.Len(t, pairs, 2)
	assert.Equal(t, [2]string{"issue_id", "7"}, pairs[0])
	assert.Equal(t, [2]string{"title", "Crash on save"}, pairs[1])

	assert.Nil(t, payloadPairs(models.ActivityEvent{}))
	assert.Nil(t, payloadPairs(models.ActivityEvent{Payload: datatypes.JSON(`not json`)}))
}

func ruleFixture(channel, url string) models.NotificationRule {
	config, _ := json.Marshal(map[string]string{"url": url})

	return models.NotificationRule{
		TriggerType: "issue_created",
		Channel:     channel,
		IsActive:    true,
		Config:      datatypes.JSON(config),
	}
}

func TestSendRuleNotificationGenericWebhook(t *testing.T) {
	type delivery struct {
		event      WebhookEvent
		action     string
		deliveryID string
	}

	received := make(chan delivery, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event WebhookEvent
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&event))

		received <- delivery{
			event:      event,
			action:     r.Header.Get("X-Issuedesk-Event"),
			deliveryID: r.Header.Get("X-Issuedesk-Delivery"),
		}
	}))
	defer server.Close()

	rule := ruleFixture(models.ChannelWebhook, server.URL)
	project := models.Project{Title: "Tracker"}
	event := models.ActivityEvent{
		ProjectID:   3,
		ActorUserID: 9,
		Action:      "issue_created",
		Payload:     datatypes.JSON(`{"issue_id":7}`),
	}

	require.NoError(t, SendRuleNotification(rule, project, event))

	got := <-received
	assert.Equal(t, "issue_created", got.action)
	assert.NotEmpty(t, got.deliveryID)
	assert.Equal(t, uint(3), got.event.ProjectID)
	assert.Equal(t, "Tracker", got.event.Project)
	assert.Equal(t, uint(9), got.event.ActorUserID)
	assert.JSONEq(t, `{"issue_id":7}`, string(got.event.Payload))
}

func TestSendRuleNotificationDiscord(t *testing.T) {
	received := make(chan DiscordWebhookRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload DiscordWebhookRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
	}))
	defer server.Close()

	rule := ruleFixture(models.ChannelDiscord, server.URL)
	project := models.Project{Title: "Tracker"}
	event := models.ActivityEvent{Action: "issue_deleted", ActorUserID: 9}

	require.NoError(t, SendRuleNotification(rule, project, event))

	payload := <-received
	assert.Equal(t, Username, payload.Username)
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, "Issue deleted", payload.Embeds[0].Title)
	assert.Equal(t, ColorRed, payload.Embeds[0].Color)
	require.NotEmpty(t, payload.Embeds[0].Fields)
	assert.Equal(t, "Tracker", payload.Embeds[0].Fields[0].Value)
}

func TestSendRuleNotificationSlack(t *testing.T) {
	received := make(chan SlackWebhookRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload SlackWebhookRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
	}))
	defer server.Close()

	rule := ruleFixture(models.ChannelSlack, server.URL)
	project := models.Project{Title: "Tracker"}
	event := models.ActivityEvent{Action: "issue_updated", ActorUserID: 9}

	require.NoError(t, SendRuleNotification(rule, project, event))

	payload := <-received
	assert.Equal(t, Username, payload.Username)
	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "warning", payload.Attachments[0].Color)
	assert.Equal(t, "Issue updated", payload.Attachments[0].Title)
}

func TestSendRuleNotificationRejectsBadRules(t *testing.T) {
	project := models.Project{Title: "Tracker"}
	event := models.ActivityEvent{Action: "issue_created"}

	broken := models.NotificationRule{Channel: models.ChannelWebhook, Config: datatypes.JSON(`not json`)}
	assert.ErrorContains(t, SendRuleNotification(broken, project, event), "invalid rule config")

	missingURL := models.NotificationRule{Channel: models.ChannelWebhook, Config: datatypes.JSON(`{}`)}
	assert.ErrorContains(t, SendRuleNotification(missingURL, project, event), "no url")

	unknown := ruleFixture("pager", "http://localhost:1")
	assert.ErrorContains(t, SendRuleNotification(unknown, project, event), "unknown notification channel")
}

func TestSendRuleNotificationSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	rule := ruleFixture(models.ChannelWebhook, server.URL)

	err := SendRuleNotification(rule, models.Project{Title: "Tracker"}, models.ActivityEvent{Action: "issue_created"})
	assert.ErrorContains(t, err, "status 500")
}

func TestDispatchEvent(t *testing.T) {
	testutil.OpenTestDB(t)

	author := testutil.CreateUser(t, "author@example.com")
	project := testutil.CreateProject(t, author, "Tracker")

	received := make(chan string, 4)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("X-Issuedesk-Event")
	}))
	defer server.Close()

	matching := ruleFixture(models.ChannelWebhook, server.URL)
	matching.ProjectID = project.ID
	matching.UserID = author.ID
	require.NoError(t, db.DB.Create(&matching).Error)

	otherTrigger := ruleFixture(models.ChannelWebhook, server.URL)
	otherTrigger.ProjectID = project.ID
	otherTrigger.UserID = author.ID
	otherTrigger.TriggerType = "issue_deleted"
	require.NoError(t, db.DB.Create(&otherTrigger).Error)

	inactive := ruleFixture(models.ChannelWebhook, server.URL)
	inactive.ProjectID = project.ID
	inactive.UserID = author.ID
	require.NoError(t, db.DB.Create(&inactive).Error)
	require.NoError(t, db.DB.Model(&inactive).Update("is_active", false).Error)

	DispatchEvent(models.ActivityEvent{
		ProjectID:   project.ID,
		ActorUserID: author.ID,
		Action:      "issue_created",
	})

	select {
	case action := <-received:
		assert.Equal(t, "issue_created", action)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a webhook delivery")
	}

	// Only the matching active rule fires.
	select {
	case action := <-received:
		t.Fatalf("unexpected extra delivery %q", action)
	case <-time.After(150 * time.Millisecond):
	}
}
