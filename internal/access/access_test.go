package access_test

import (
	"testing"

	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/access"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipFacts(t *testing.T) {
	testutil.OpenTestDB(t)

	author := testutil.CreateUser(t, "author@example.com")
	contributor := testutil.CreateUser(t, "contributor@example.com")
	outsider := testutil.CreateUser(t, "outsider@example.com")

	project := testutil.CreateProject(t, author, "Tracker")
	testutil.AddContributor(t, project, contributor, models.PermissionContributor)

	assert.True(t, access.IsMember(project.ID, author.ID))
	assert.True(t, access.IsOwner(project.ID, author.ID))

	assert.True(t, access.IsMember(project.ID, contributor.ID))
	assert.False(t, access.IsOwner(project.ID, contributor.ID))

	assert.False(t, access.IsMember(project.ID, outsider.ID))
	assert.False(t, access.IsOwner(project.ID, outsider.ID))

	// Viewing needs any membership, not the OWNER role.
	assert.True(t, access.CanViewProject(author.ID, project))
	assert.True(t, access.CanViewProject(contributor.ID, project))
	assert.False(t, access.CanViewProject(outsider.ID, project))
}

func TestVisibleProject(t *testing.T) {
	testutil.OpenTestDB(t)

	author := testutil.CreateUser(t, "author@example.com")
	outsider := testutil.CreateUser(t, "outsider@example.com")
	project := testutil.CreateProject(t, author, "Tracker")

	loaded, err := access.VisibleProject(project.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, loaded.ID)
	assert.Equal(t, "Tracker", loaded.Title)

	// A non-member cannot distinguish an invisible project from a missing one.
	_, err = access.VisibleProject(project.ID, outsider.ID)
	assert.ErrorIs(t, err, access.ErrNotFound)

	_, err = access.VisibleProject(project.ID+1000, author.ID)
	assert.ErrorIs(t, err, access.ErrNotFound)
}

func TestRequireMemberChecksExistenceFirst(t *testing.T) {
	testutil.OpenTestDB(t)

	author := testutil.CreateUser(t, "author@example.com")
	outsider := testutil.CreateUser(t, "outsider@example.com")
	project := testutil.CreateProject(t, author, "Tracker")

	assert.NoError(t, access.RequireMember(project.ID, author.ID))
	assert.ErrorIs(t, access.RequireMember(project.ID, outsider.ID), access.ErrForbidden)

	// A missing project is NotFound for everyone, members and outsiders alike.
	assert.ErrorIs(t, access.RequireMember(project.ID+1000, author.ID), access.ErrNotFound)
	assert.ErrorIs(t, access.RequireMember(project.ID+1000, outsider.ID), access.ErrNotFound)
}

func TestRequireOwner(t *testing.T) {
	testutil.OpenTestDB(t)

	author := testutil.CreateUser(t, "author@example.com")
	contributor := testutil.CreateUser(t, "contributor@example.com")
	project := testutil.CreateProject(t, author, "Tracker")
	testutil.AddContributor(t, project, contributor, models.PermissionContributor)

	assert.NoError(t, access.RequireOwner(project.ID, author.ID))
	assert.ErrorIs(t, access.RequireOwner(project.ID, contributor.ID), access.ErrForbidden)
	assert.ErrorIs(t, access.RequireOwner(project.ID+1000, contributor.ID), access.ErrNotFound)
}

func TestCanMutateProject(t *testing.T) {
	testutil.OpenTestDB(t)

	author := testutil.CreateUser(t, "author@example.com")
	coOwner := testutil.CreateUser(t, "co-owner@example.com")
	project := testutil.CreateProject(t, author, "Tracker")

	// OWNER permission without authorship does not grant mutation.
	testutil.AddContributor(t, project, coOwner, models.PermissionOwner)

	assert.True(t, access.CanMutateProject(author.ID, project))
	assert.False(t, access.CanMutateProject(coOwner.ID, project))

	orphan := models.Project{Title: "Orphan", Type: "back-end"}
	require.NoError(t, db.DB.Create(&orphan).Error)
	assert.False(t, access.CanMutateProject(author.ID, orphan))
}

func TestCanMutateIssue(t *testing.T) {
	testutil.OpenTestDB(t)

	author := testutil.CreateUser(t, "author@example.com")
	reporter := testutil.CreateUser(t, "reporter@example.com")
	project := testutil.CreateProject(t, author, "Tracker")
	membership := testutil.AddContributor(t, project, reporter, models.PermissionContributor)

	issue := testutil.CreateIssue(t, project, reporter, "Crash on save")

	assert.True(t, access.CanMutateIssue(reporter.ID, issue))
	assert.False(t, access.CanMutateIssue(author.ID, issue))

	// Authorship is not enough once the membership is gone.
	require.NoError(t, db.DB.Delete(&membership).Error)
	assert.False(t, access.CanMutateIssue(reporter.ID, issue))
}

func TestCanMutateComment(t *testing.T) {
	testutil.OpenTestDB(t)

	author := testutil.CreateUser(t, "author@example.com")
	commenter := testutil.CreateUser(t, "commenter@example.com")
	project := testutil.CreateProject(t, author, "Tracker")
	membership := testutil.AddContributor(t, project, commenter, models.PermissionContributor)

	issue := testutil.CreateIssue(t, project, author, "Crash on save")
	comment := testutil.CreateComment(t, issue, commenter, "Reproduced on main")

	assert.True(t, access.CanMutateComment(commenter.ID, comment))
	assert.False(t, access.CanMutateComment(author.ID, comment))

	// Comment mutation is authorship only, it survives losing membership.
	require.NoError(t, db.DB.Delete(&membership).Error)
	assert.True(t, access.CanMutateComment(commenter.ID, comment))
}
