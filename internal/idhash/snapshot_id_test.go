package idhash

import (
	"testing"
	"time"

	"github.com/mr-tron/base58"
)

func TestSnapshotID_Deterministic(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id1 := SnapshotID("amazon", "B0001", at)
	id2 := SnapshotID("amazon", "B0001", at)
	if id1 != id2 {
		t.Errorf("same inputs produced different ids: %s vs %s", id1, id2)
	}

	decoded, err := base58.Decode(id1)
	if err != nil {
		t.Fatalf("id is not valid base58: %v", err)
	}
	if len(decoded) != 32 {
		t.Errorf("decoded length = %d, want 32", len(decoded))
	}
}

func TestSnapshotID_TimezoneIndependent(t *testing.T) {
	utc := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	shanghai := utc.In(time.FixedZone("CST", 8*3600))

	if SnapshotID("tiktok", "x", utc) != SnapshotID("tiktok", "x", shanghai) {
		t.Error("same instant in different zones produced different ids")
	}
}

func TestSnapshotID_DifferentInputs(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	base := SnapshotID("amazon", "B0001", at)

	tests := []struct {
		name      string
		platform  string
		productID string
		at        time.Time
	}{
		{"different platform", "shopee", "B0001", at},
		{"different product", "amazon", "B0002", at},
		{"different second", "amazon", "B0001", at.Add(time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnapshotID(tt.platform, tt.productID, tt.at); got == base {
				t.Errorf("expected id to differ from base, got %s", got)
			}
		})
	}
}
