package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"dailyledger/model"
)

var (
	ErrSchemaVersion = errors.New("ledger was written by a newer version")
	errCorruptLedger = errors.New("corrupt ledger blob")
)

// migrations[v] upgrades a schema from version v to v+1.
var migrations = map[int]func(*model.LedgerSchema) error{
	0: migrateUnversioned,
}

// Unversioned blobs share the v1 record shape but were never deduplicated.
func migrateUnversioned(s *model.LedgerSchema) error {
	seen := make(map[string]struct{}, len(s.Records))
	kept := s.Records[:0]
	for _, r := range s.Records {
		if _, dup := seen[r.Date]; dup {
			continue
		}
		seen[r.Date] = struct{}{}
		kept = append(kept, r)
	}
	s.Records = kept
	return nil
}

// decodeLedger parses a ledger blob and brings older versions up to date.
// A newer version is returned as-is together with ErrSchemaVersion.
func decodeLedger(raw []byte) (model.LedgerSchema, error) {
	var s model.LedgerSchema
	if len(raw) == 0 {
		return model.LedgerSchema{Version: model.CurrentSchemaVersion}, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.LedgerSchema{}, fmt.Errorf("%w: %v", errCorruptLedger, err)
	}
	if s.Version > model.CurrentSchemaVersion {
		model.SortRecords(s.Records)
		return s, fmt.Errorf("%w: blob v%d, supported v%d", ErrSchemaVersion, s.Version, model.CurrentSchemaVersion)
	}
	for s.Version < model.CurrentSchemaVersion {
		step, ok := migrations[s.Version]
		if !ok {
			return model.LedgerSchema{}, fmt.Errorf("%w: no migration from v%d", errCorruptLedger, s.Version)
		}
		if err := step(&s); err != nil {
			return model.LedgerSchema{}, fmt.Errorf("migrate v%d: %w", s.Version, err)
		}
		s.Version++
	}
	model.SortRecords(s.Records)
	return s, nil
}
