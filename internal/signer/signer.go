// Package signer computes the per-request integrity tag attached to every
// signed operation call as the poe-tag-id header.
package signer

import (
	"crypto/md5"
	"encoding/hex"
)

// salt is a fixed protocol constant appended after the formkey.
const salt = "4LxgHM6KpFqokX0Ox"

// Tag returns the integrity tag for a serialized payload and signing secret:
// the lowercase hex MD5 of payload || secret || salt. Deterministic, no side
// effects.
func Tag(payload, secret string) string {
	h := md5.New()
	h.Write([]byte(payload))
	h.Write([]byte(secret))
	h.Write([]byte(salt))
	return hex.EncodeToString(h.Sum(nil))
}
