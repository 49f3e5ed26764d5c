package idhash

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

// SnapshotID computes a deterministic history snapshot id.
// Formula: base58(SHA256(platform|product_id|unix_seconds))
func SnapshotID(platform, productID string, at time.Time) string {
	data := fmt.Sprintf("%s|%s|%d", platform, productID, at.UTC().Unix())
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
