package auth

import (
	"strings"
	"testing"
	"time"

	"goldsure-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("a", 32)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 7, Name: "Goldsure Staff", Email: "staff@goldsure.com", Role: models.RoleStaff}

	token, err := GenerateToken(testSecret, user, SessionTTL, time.Now())
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.Equal(t, "Goldsure Staff", claims.Name)
}

func TestParseTokenRejects(t *testing.T) {
	user := &models.User{ID: 1, Name: "Goldsure Admin", Role: models.RoleOwner}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken(testSecret, user, SessionTTL, time.Now())
		require.NoError(t, err)
		_, err = ParseToken(strings.Repeat("b", 32), token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(testSecret, user, time.Hour, time.Now().Add(-2*time.Hour))
		require.NoError(t, err)
		_, err = ParseToken(testSecret, token)
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := GenerateToken(testSecret, &models.User{ID: 2, Role: "cashier"}, SessionTTL, time.Now())
		require.NoError(t, err)
		_, err = ParseToken(testSecret, token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken(testSecret, "not-a-token")
		assert.Error(t, err)
	})
}
