package identity_test

import (
	"testing"

	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/identity"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"dev@EXAMPLE.COM", "dev@example.com"},
		{"Dev@Example.Com", "Dev@example.com"},
		{"  dev@example.com  ", "dev@example.com"},
		{"dev@example.com", "dev@example.com"},
		{"no-at-sign", "no-at-sign"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, identity.NormalizeEmail(tc.in), "input %q", tc.in)
	}
}

func TestCreateUser(t *testing.T) {
	testutil.OpenTestDB(t)

	user, err := identity.CreateUser("Dev@EXAMPLE.com", "s3cretpass!", "Ada", "Lovelace")
	require.NoError(t, err)

	// Domain part lower-cased, local part preserved.
	assert.Equal(t, "Dev@example.com", user.Email)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)

	// The password is stored as a bcrypt hash, never verbatim.
	assert.NotEqual(t, "s3cretpass!", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cretpass!")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	testutil.OpenTestDB(t)

	_, err := identity.CreateUser("dev@example.com", "s3cretpass!", "Ada", "Lovelace")
	require.NoError(t, err)

	// Same address modulo domain casing collides after normalization.
	_, err = identity.CreateUser("dev@EXAMPLE.com", "otherpass42", "Grace", "Hopper")
	assert.ErrorIs(t, err, identity.ErrEmailTaken)

	var count int64
	require.NoError(t, db.DB.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateUserRequiresEmail(t *testing.T) {
	testutil.OpenTestDB(t)

	_, err := identity.CreateUser("   ", "s3cretpass!", "Ada", "Lovelace")
	assert.ErrorIs(t, err, identity.ErrEmailRequired)
}

func TestCreateSuperuser(t *testing.T) {
	testutil.OpenTestDB(t)

	user, err := identity.CreateSuperuser("admin@example.com", "s3cretpass!")
	require.NoError(t, err)

	assert.True(t, user.IsActive)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
}

func TestAuthenticate(t *testing.T) {
	testutil.OpenTestDB(t)

	created, err := identity.CreateUser("dev@example.com", "s3cretpass!", "Ada", "Lovelace")
	require.NoError(t, err)

	user, err := identity.Authenticate("dev@EXAMPLE.com", "s3cretpass!")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = identity.Authenticate("dev@example.com", "wrong-password")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = identity.Authenticate("nobody@example.com", "s3cretpass!")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactive(t *testing.T) {
	testutil.OpenTestDB(t)

	user, err := identity.CreateUser("dev@example.com", "s3cretpass!", "Ada", "Lovelace")
	require.NoError(t, err)

	require.NoError(t, db.DB.Model(&user).Update("is_active", false).Error)

	_, err = identity.Authenticate("dev@example.com", "s3cretpass!")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}
