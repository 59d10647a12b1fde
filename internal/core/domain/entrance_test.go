package domain_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickety/marketplace-backend/internal/core/domain"
)

func testEntranceDomain() domain.EntranceDomain {
	return domain.EntranceDomain{
		Name:         "Tickety",
		Version:      "1",
		NetworkID:    "mainnet",
		DeploymentID: uuid.MustParse("9f3b6c1e-2a4d-4e8f-9c0a-1b2c3d4e5f60"),
	}
}

func TestVerifyEntrancePass(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	d := testEntranceDomain()
	sig := domain.SignEntrancePass(priv, d, 42)

	t.Run("valid pass verifies", func(t *testing.T) {
		assert.True(t, domain.VerifyEntrancePass(pub, d, 42, sig))
	})

	t.Run("different ticket id fails", func(t *testing.T) {
		assert.False(t, domain.VerifyEntrancePass(pub, d, 43, sig))
	})

	t.Run("different key fails", func(t *testing.T) {
		otherPub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		assert.False(t, domain.VerifyEntrancePass(otherPub, d, 42, sig))
	})

	t.Run("tampered signature fails", func(t *testing.T) {
		bad := make([]byte, len(sig))
		copy(bad, sig)
		bad[0] ^= 0xff
		assert.False(t, domain.VerifyEntrancePass(pub, d, 42, bad))
	})

	t.Run("malformed inputs fail", func(t *testing.T) {
		assert.False(t, domain.VerifyEntrancePass(nil, d, 42, sig))
		assert.False(t, domain.VerifyEntrancePass(pub, d, 42, sig[:10]))
	})
}

func TestEntranceDomain_PinsDeployment(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	d := testEntranceDomain()
	sig := domain.SignEntrancePass(priv, d, 42)

	tests := []struct {
		name   string
		mutate func(*domain.EntranceDomain)
	}{
		{"different name", func(d *domain.EntranceDomain) { d.Name = "OtherMarket" }},
		{"different version", func(d *domain.EntranceDomain) { d.Version = "2" }},
		{"different network", func(d *domain.EntranceDomain) { d.NetworkID = "testnet" }},
		{"different deployment", func(d *domain.EntranceDomain) { d.DeploymentID = uuid.New() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := testEntranceDomain()
			tt.mutate(&other)
			assert.False(t, domain.VerifyEntrancePass(pub, other, 42, sig))
		})
	}
}

func TestEntranceDomain_DigestIsUnambiguous(t *testing.T) {
	// Shifting bytes between adjacent fields must change the digest.
	a := domain.EntranceDomain{Name: "ab", Version: "c", NetworkID: "net", DeploymentID: uuid.Nil}
	b := domain.EntranceDomain{Name: "a", Version: "bc", NetworkID: "net", DeploymentID: uuid.Nil}

	assert.NotEqual(t, a.Digest(1), b.Digest(1))
}
