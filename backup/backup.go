package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danthegoodman1/partman/s3_helper"
	"github.com/danthegoodman1/partman/syspart"
	"github.com/danthegoodman1/partman/utils"
	"github.com/rs/zerolog"
)

type (
	// Manifest records what a FREEZE covered, so the shadow/ directory on
	// the server can later be matched to an upload or restore.
	Manifest struct {
		BackupID  string
		Database  string
		Table     string
		Partition string
		CreatedAt time.Time
		// TotalBytes is the compressed size of the frozen parts
		TotalBytes uint64
		Parts      []ManifestPart
	}

	ManifestPart struct {
		Name  string
		Marks uint64
		Bytes uint64
	}
)

// NewManifest builds a freeze manifest from a parts listing, keeping
// only the active parts of the frozen table and partition.
func NewManifest(database, table, partition string, parts []syspart.Part) Manifest {
	m := Manifest{
		BackupID:  utils.GenKSortedID("bk_"),
		Database:  database,
		Table:     table,
		Partition: partition,
		CreatedAt: time.Now(),
		Parts:     make([]ManifestPart, 0),
	}
	for _, p := range parts {
		if !p.Active || p.Table != table || p.Partition != partition {
			continue
		}
		m.Parts = append(m.Parts, ManifestPart{
			Name:  p.Name,
			Marks: p.Marks,
			Bytes: p.Bytes,
		})
		m.TotalBytes += p.Bytes
	}
	return m
}

// Key is the S3 object key the manifest is stored under.
func (m Manifest) Key() string {
	return fmt.Sprintf("freeze/%s/%s/%s/%s.json", m.Database, m.Table, m.Partition, m.BackupID)
}

// UploadFreezeManifest lists the partition's active parts and uploads a
// manifest describing them. Call it right after a successful FREEZE.
func UploadFreezeManifest(ctx context.Context, conn syspart.Conn, table, partition string) (*Manifest, error) {
	logger := zerolog.Ctx(ctx)

	parts, err := syspart.FetchActive(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("error in syspart.FetchActive: %w", err)
	}

	m := NewManifest(conn.Database(), table, partition, parts)

	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("error in json.Marshal: %w", err)
	}

	_, err = s3_helper.WriteBytesToS3(ctx, m.Key(), bytes.NewReader(jsonBytes), utils.Ptr("application/json"))
	if err != nil {
		return nil, fmt.Errorf("error uploading manifest: %w", err)
	}

	logger.Debug().Str("backupID", m.BackupID).Str("key", m.Key()).Int("parts", len(m.Parts)).Msg("uploaded freeze manifest")
	return &m, nil
}
