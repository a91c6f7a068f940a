package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var fastParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPasswordWithParams("correct horse", fastParams)
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, encoded := range []string{"", "plain", "$bcrypt$v=19$t=1,m=1,p=1$a$b", "$argon2id$v=19$t=x$a$b"} {
		_, err := VerifyPassword("x", []byte(encoded))
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	id := models.Identity{UserID: "u1", SessionID: "s1", DeviceID: "d1", Role: models.UserRoleAdmin}

	token, err := GenerateAccessToken("secret", id, time.Minute)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())

	_, err = ParseAccessToken(token, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken("secret", models.Identity{UserID: "u1"}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenHash(t *testing.T) {
	token, hash, err := GenerateRefreshToken(32)
	require.NoError(t, err)
	assert.Equal(t, hash, HashRefreshToken(token))
	assert.NotEmpty(t, token)
}
