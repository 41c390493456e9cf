package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/smarttransit/backend/internal/models"
)

var testSecret = []byte("test-secret")

func testPayload() Payload {
	return Payload{
		ID:    uuid.New(),
		Email: "rider@example.com",
		Role:  models.RoleCommuter,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	p := testPayload()

	signed, err := SignAccess(p, testSecret, time.Minute)
	require.NoError(t, err)

	claims, err := Parse(signed, testSecret)
	require.NoError(t, err)

	got, err := claims.Payload()
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := SignAccess(testPayload(), testSecret, time.Minute)
	require.NoError(t, err)

	_, err = Parse(signed, []byte("other-secret"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	signed, err := SignAccess(testPayload(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(signed, testSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRefreshRejectsAccessToken(t *testing.T) {
	signed, err := SignAccess(testPayload(), testSecret, time.Minute)
	require.NoError(t, err)

	_, err = ParseRefresh(signed, testSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenHasJTI(t *testing.T) {
	signed, err := SignRefresh(testPayload(), testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseRefresh(signed, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)
}

func TestDecodeReadsExpiredToken(t *testing.T) {
	p := testPayload()
	signed, err := SignRefresh(p, testSecret, -time.Hour)
	require.NoError(t, err)

	claims, err := Decode(signed, testSecret)
	require.NoError(t, err)
	require.Equal(t, p.Email, claims.Email)
	require.True(t, claims.ExpiresAt.Before(time.Now()))

	// signature still matters even when validation is skipped
	_, err = Decode(signed, []byte("other-secret"))
	require.ErrorIs(t, err, ErrInvalidToken)
}
