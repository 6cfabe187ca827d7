package backup

import (
	"strings"
	"testing"

	"github.com/danthegoodman1/partman/syspart"
)

func TestNewManifestFilters(t *testing.T) {
	parts := []syspart.Part{
		{Database: "default", Table: "events", Partition: "201901", Name: "201901_1_8_2", Active: true, Marks: 128, Bytes: 1000},
		{Database: "default", Table: "events", Partition: "201901", Name: "201901_9_9_0", Active: true, Marks: 2, Bytes: 50},
		// Superseded part awaiting cleanup, must be skipped
		{Database: "default", Table: "events", Partition: "201901", Name: "201901_1_4_1", Active: false, Bytes: 900},
		// Different partition
		{Database: "default", Table: "events", Partition: "201812", Name: "201812_1_2_1", Active: true, Bytes: 700},
		// Different table
		{Database: "default", Table: "clicks", Partition: "201901", Name: "201901_1_1_0", Active: true, Bytes: 10},
	}

	m := NewManifest("default", "events", "201901", parts)

	if len(m.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(m.Parts))
	}
	if m.TotalBytes != 1050 {
		t.Fatalf("expected 1050 total bytes, got %d", m.TotalBytes)
	}
	if m.Parts[0].Name != "201901_1_8_2" || m.Parts[1].Name != "201901_9_9_0" {
		t.Fatalf("unexpected part names: %+v", m.Parts)
	}
	if !strings.HasPrefix(m.BackupID, "bk_") {
		t.Fatalf("unexpected backup id %s", m.BackupID)
	}
}

func TestManifestKey(t *testing.T) {
	m := Manifest{BackupID: "bk_123", Database: "default", Table: "events", Partition: "201901"}
	if m.Key() != "freeze/default/events/201901/bk_123.json" {
		t.Fatalf("unexpected key %s", m.Key())
	}
}
