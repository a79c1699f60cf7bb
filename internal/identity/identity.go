package identity

import (
	"errors"
	"strings"

	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
)

// NormalizeEmail trims whitespace and lower-cases the domain part only.
// The local part is case-sensitive per RFC 5321, so "John@Example.COM"
// becomes "John@example.com".
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}

	return email[:at+1] + strings.ToLower(email[at+1:])
}

func CreateUser(email, password, firstName, lastName string) (models.User, error) {
	return createUser(email, password, firstName, lastName, false)
}

// CreateSuperuser creates a staff account with superuser rights, used by the
// createsuperuser CLI command.
func CreateSuperuser(email, password string) (models.User, error) {
	return createUser(email, password, "", "", true)
}

func createUser(email, password, firstName, lastName string, super bool) (models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return models.User{}, ErrEmailRequired
	}

	var existing models.User

	err := db.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return models.User{}, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		IsStaff:      super,
		IsSuperuser:  super,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	return user, nil
}

// Authenticate verifies the credentials against an active account. Unknown
// email, wrong password and deactivated accounts all come back as
// ErrInvalidCredentials so callers cannot tell them apart.
func Authenticate(email, password string) (models.User, error) {
	var user models.User

	err := db.DB.Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}
