package service

import (
	"testing"

	"go-storefront-api/internal/model"
	"go-storefront-api/internal/repository"
	"go-storefront-api/pkg/token"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuth(t *testing.T) (AuthService, repository.UserRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}))

	userRepo := repository.NewUserRepo(db)
	return NewAuthService(userRepo), userRepo
}

func TestSignUp(t *testing.T) {
	svc, users := setupAuth(t)

	t.Run("creates the account and a valid session", func(t *testing.T) {
		session, err := svc.SignUp("Ada Lovelace", "ada@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", session.User.Email)

		claims, err := token.Parse(session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, claims.UserID)

		stored, err := users.FindByEmail("ada@example.com")
		require.NoError(t, err)
		assert.True(t, stored.CheckPassword("secret123"))
		assert.NotEqual(t, "secret123", stored.Password) // hashed at rest
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		_, err := svc.SignUp("Someone Else", "ada@example.com", "another1")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	svc, users := setupAuth(t)

	_, err := svc.SignUp("Ada Lovelace", "ada@example.com", "secret123")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := svc.Login("ada@example.com", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		_, errPass := svc.Login("ada@example.com", "wrong-pass")
		_, errMail := svc.Login("ghost@example.com", "secret123")
		assert.ErrorIs(t, errPass, ErrInvalidCredentials)
		assert.ErrorIs(t, errMail, ErrInvalidCredentials)
	})

	t.Run("login rotates the token version", func(t *testing.T) {
		first, err := svc.Login("ada@example.com", "secret123")
		require.NoError(t, err)
		firstClaims, err := token.Parse(first.Token)
		require.NoError(t, err)

		_, err = svc.Login("ada@example.com", "secret123")
		require.NoError(t, err)

		stored, err := users.FindByEmail("ada@example.com")
		require.NoError(t, err)
		// The older session no longer matches the stored version
		assert.NotEqual(t, firstClaims.TokenVersion, stored.TokenVersion)
	})
}

func TestLogout(t *testing.T) {
	svc, users := setupAuth(t)

	session, err := svc.SignUp("Ada Lovelace", "ada@example.com", "secret123")
	require.NoError(t, err)

	claims, err := token.Parse(session.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(claims.UserID))

	stored, err := users.FindByID(claims.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, claims.TokenVersion, stored.TokenVersion)
}

func TestCurrentUser(t *testing.T) {
	svc, _ := setupAuth(t)

	session, err := svc.SignUp("Ada Lovelace", "ada@example.com", "secret123")
	require.NoError(t, err)

	user, err := svc.CurrentUser(session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)
}
