package domain

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// EntranceDomain is the tuple bound into every entrance-pass digest. It
// pins a signature to one marketplace deployment on one network, so a
// pass signed for a different deployment never verifies here. The tuple
// is fixed at construction and must not change for the lifetime of a
// deployment, or previously issued passes silently stop verifying.
type EntranceDomain struct {
	Name         string
	Version      string
	NetworkID    string
	DeploymentID uuid.UUID
}

// Digest computes the domain-separated sha3-256 hash an entrance pass
// signs: every field is length-prefixed so adjacent fields cannot be
// shifted into one another.
func (d EntranceDomain) Digest(ticketID int64) []byte {
	h := sha3.New256()
	writeField := func(b []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(b)))
		h.Write(n[:])
		h.Write(b)
	}
	writeField([]byte(d.Name))
	writeField([]byte(d.Version))
	writeField([]byte(d.NetworkID))
	writeField(d.DeploymentID[:])

	var id [8]byte
	binary.BigEndian.PutUint64(id[:], uint64(ticketID))
	writeField(id[:])

	return h.Sum(nil)
}

// SignEntrancePass produces the signature a ticket owner hands to a
// gate-keeper. The owner's key never leaves their client; this helper
// exists for tests and tooling.
func SignEntrancePass(priv ed25519.PrivateKey, d EntranceDomain, ticketID int64) []byte {
	return ed25519.Sign(priv, d.Digest(ticketID))
}

// VerifyEntrancePass recomputes the domain-separated digest and checks
// the signature against the owner's registered public key.
func VerifyEntrancePass(pub []byte, d EntranceDomain, ticketID int64, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), d.Digest(ticketID), sig)
}
