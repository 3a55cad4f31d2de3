package badger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/marmos91/dittodrive/pkg/drive"
)

// ============================================================================
// Key namespace
// ============================================================================
//
// Data Type        Prefix   Key Format       Value Type
// ========================================================================
// Snapshot header  "m:"     m:fs             header (JSON)
// Entry records    "e:"     e:<seq>          drive.EntryRecord (JSON)
//
// <seq> is the zero-padded position of the record in the snapshot, so a
// prefix scan returns the records in the order they were saved.

const (
	prefixMeta  = "m:"
	prefixEntry = "e:"
)

func keyHeader() []byte {
	return []byte(prefixMeta + "fs")
}

func keyEntry(seq int) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefixEntry, seq))
}

// header is everything in a snapshot except its entries.
type header struct {
	FileSystemID uuid.UUID `json:"filesystem_id"`
	RootUser     string    `json:"root_user"`
	RootID       int       `json:"root_id"`
	NextID       int       `json:"next_id"`
	Count        int       `json:"count"`
}

func encodeHeader(snap *drive.Snapshot) ([]byte, error) {
	data, err := json.Marshal(header{
		FileSystemID: snap.FileSystemID,
		RootUser:     snap.RootUser,
		RootID:       snap.RootID,
		NextID:       snap.NextID,
		Count:        len(snap.Entries),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot header: %w", err)
	}
	return data, nil
}

func decodeHeader(data []byte) (*header, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot header: %w", err)
	}
	return &h, nil
}

func encodeEntry(rec *drive.EntryRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry %d: %w", rec.ID, err)
	}
	return data, nil
}

func decodeEntry(data []byte) (drive.EntryRecord, error) {
	var rec drive.EntryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return drive.EntryRecord{}, fmt.Errorf("failed to decode entry: %w", err)
	}
	return rec, nil
}
