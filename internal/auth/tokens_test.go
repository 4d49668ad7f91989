package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/testutils"
)

var allKinds = []auth.ActorKind{
	auth.KindPlatform,
	auth.KindMerchant,
	auth.KindBuyer,
	auth.KindClient,
}

func testActor() *auth.Actor {
	return &auth.Actor{
		ID:     42,
		OrgID:  7,
		Email:  "user@example.com",
		RoleID: 3,
		Active: true,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer(testutils.TestConfig())

	for _, kind := range allKinds {
		t.Run(string(kind), func(t *testing.T) {
			token, err := issuer.IssueAccess(kind, testActor())
			assert.NoError(t, err)

			claims, err := issuer.VerifyAccess(token, kind)
			assert.NoError(t, err)
			assert.Equal(t, string(kind), claims.Type)
			assert.Equal(t, "user@example.com", claims.Email)
			assert.Equal(t, uint(7), claims.OrgID)
			assert.Equal(t, uint(3), claims.RoleID)

			id, err := auth.SubjectID(claims.Subject)
			assert.NoError(t, err)
			assert.Equal(t, uint(42), id)
		})
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer(testutils.TestConfig())

	token, err := issuer.IssueRefresh(auth.KindBuyer, testActor())
	assert.NoError(t, err)

	claims, err := issuer.VerifyRefresh(token, auth.KindBuyer)
	assert.NoError(t, err)
	assert.Equal(t, string(auth.KindBuyer), claims.Type)

	id, err := auth.SubjectID(claims.Subject)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

// A token minted for one actor kind must be rejected by every other kind,
// in both directions, for both token flavors.
func TestCrossKindRejection(t *testing.T) {
	issuer := auth.NewTokenIssuer(testutils.TestConfig())

	for _, minted := range allKinds {
		access, err := issuer.IssueAccess(minted, testActor())
		assert.NoError(t, err)
		refresh, err := issuer.IssueRefresh(minted, testActor())
		assert.NoError(t, err)

		for _, verifier := range allKinds {
			if verifier == minted {
				continue
			}
			_, err := issuer.VerifyAccess(access, verifier)
			assert.ErrorIs(t, err, auth.ErrUnauthorized,
				"access token for %s accepted by %s", minted, verifier)

			_, err = issuer.VerifyRefresh(refresh, verifier)
			assert.ErrorIs(t, err, auth.ErrUnauthorized,
				"refresh token for %s accepted by %s", minted, verifier)
		}
	}
}

func TestTokenSecretSeparation(t *testing.T) {
	issuer := auth.NewTokenIssuer(testutils.TestConfig())

	t.Run("Refresh token rejected as access token", func(t *testing.T) {
		refresh, err := issuer.IssueRefresh(auth.KindPlatform, testActor())
		assert.NoError(t, err)

		_, err = issuer.VerifyAccess(refresh, auth.KindPlatform)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("Access token rejected as refresh token", func(t *testing.T) {
		access, err := issuer.IssueAccess(auth.KindPlatform, testActor())
		assert.NoError(t, err)

		_, err = issuer.VerifyRefresh(access, auth.KindPlatform)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testutils.TestConfig()
	cfg.AccessTTL = -1 * time.Minute
	cfg.RefreshTTL = -1 * time.Minute
	issuer := auth.NewTokenIssuer(cfg)

	access, err := issuer.IssueAccess(auth.KindMerchant, testActor())
	assert.NoError(t, err)
	_, err = issuer.VerifyAccess(access, auth.KindMerchant)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	refresh, err := issuer.IssueRefresh(auth.KindMerchant, testActor())
	assert.NoError(t, err)
	_, err = issuer.VerifyRefresh(refresh, auth.KindMerchant)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestMalformedTokenRejected(t *testing.T) {
	issuer := auth.NewTokenIssuer(testutils.TestConfig())

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.VerifyAccess(token, auth.KindPlatform)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	}
}

func TestSubjectID(t *testing.T) {
	_, err := auth.SubjectID("not-a-number")
	assert.Error(t, err)

	id, err := auth.SubjectID("17")
	assert.NoError(t, err)
	assert.Equal(t, uint(17), id)
}
