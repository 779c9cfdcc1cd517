package services

import (
	"testing"

	"servicelink/config"
	"servicelink/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	service, err := NewAuthService(config.Config{JWTSecret: "test-secret"})
	require.NoError(t, err)
	return service
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(config.Config{})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	service := newTestAuthService(t)

	user := &models.User{
		BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()},
		Role:          models.RoleTechnician,
	}

	token, err := service.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	info, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, info.UserID)
	assert.Equal(t, models.RoleTechnician, info.Role)
}

func TestValidateTokenRejections(t *testing.T) {
	service := newTestAuthService(t)

	otherService, err := NewAuthService(config.Config{JWTSecret: "other-secret"})
	require.NoError(t, err)

	user := &models.User{
		BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()},
		Role:          models.RoleAdmin,
	}

	validToken, err := service.IssueToken(user)
	require.NoError(t, err)

	foreignToken, err := otherService.IssueToken(user)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt"},
		{name: "tampered token", token: validToken + "x"},
		{name: "token signed with different secret", token: foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := service.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, info)
		})
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	service := newTestAuthService(t)

	hash, err := service.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	user := &models.User{PasswordHash: hash}

	assert.NoError(t, service.VerifyPassword(user, "correct horse battery staple"))
	assert.ErrorIs(t, service.VerifyPassword(user, "wrong password"), ErrInvalidCredentials)
	assert.ErrorIs(t, service.VerifyPassword(&models.User{}, "anything"), ErrInvalidCredentials)
}
