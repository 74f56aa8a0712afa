package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dailyledger/model"
)

// Blob keys, compatible with ledgers exported from the browser widget.
const (
	LedgerKey   = "EXECUTION_LEDGER_V1"
	TaskListKey = "EXECUTION_LEDGER_TASKS"
)

var ErrDuplicateDate = errors.New("a record for this date already exists")

// LedgerStore persists the append-only ledger and the task list through a KV.
type LedgerStore struct {
	kv     KV
	logger *slog.Logger
	now    func() time.Time
}

func NewLedgerStore(kv KV, logger *slog.Logger) *LedgerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerStore{kv: kv, logger: logger.With("component", "ledger_store"), now: time.Now}
}

// LoadRecords returns every record ascending by date. Read problems degrade
// to an empty ledger.
func (s *LedgerStore) LoadRecords(ctx context.Context) []model.DailyRecord {
	raw, err := s.kv.Get(ctx, LedgerKey)
	if errors.Is(err, ErrNotFound) {
		return []model.DailyRecord{}
	}
	if err != nil {
		s.logger.Error("failed to load records", "error", err)
		return []model.DailyRecord{}
	}

	schema, err := decodeLedger(raw)
	switch {
	case errors.Is(err, ErrSchemaVersion):
		s.logger.Warn("ledger version is newer than supported, appends disabled", "version", schema.Version)
	case err != nil:
		s.logger.Error("failed to decode records", "error", err)
		return []model.DailyRecord{}
	}
	if schema.Records == nil {
		return []model.DailyRecord{}
	}
	return schema.Records
}

// SaveRecord appends record. It fails with ErrDuplicateDate when the date is
// already sealed; the stored ledger is then left untouched.
func (s *LedgerStore) SaveRecord(ctx context.Context, record model.DailyRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	err := s.kv.Update(ctx, LedgerKey, s.appendFn(record, false))
	if errors.Is(err, errCorruptLedger) {
		if berr := s.backupCorrupt(ctx); berr != nil {
			return fmt.Errorf("failed to back up corrupt ledger: %w", berr)
		}
		err = s.kv.Update(ctx, LedgerKey, s.appendFn(record, true))
	}

	switch {
	case errors.Is(err, ErrDuplicateDate):
		s.logger.Error("rejected attempt to overwrite an existing date", "date", record.Date)
		return err
	case err != nil:
		s.logger.Error("failed to save record", "date", record.Date, "error", err)
		return err
	}
	s.logger.Info("record sealed", "date", record.Date, "score", record.DailyScore)
	return nil
}

func (s *LedgerStore) appendFn(record model.DailyRecord, discardCorrupt bool) UpdateFunc {
	return func(current []byte) ([]byte, error) {
		schema, err := decodeLedger(current)
		if err != nil {
			if !discardCorrupt || !errors.Is(err, errCorruptLedger) {
				return nil, err
			}
			schema = model.LedgerSchema{Version: model.CurrentSchemaVersion}
		}
		if _, exists := model.FindRecord(schema.Records, record.Date); exists {
			return nil, ErrDuplicateDate
		}

		records := append(schema.Records, record)
		model.SortRecords(records)
		return json.Marshal(model.LedgerSchema{
			Version: model.CurrentSchemaVersion,
			Records: records,
		})
	}
}

func (s *LedgerStore) backupCorrupt(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, LedgerKey)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s_corrupt_%d", LedgerKey, s.now().UnixMilli())
	s.logger.Warn("moving corrupt ledger aside", "backup_key", key)
	return s.kv.Set(ctx, key, raw)
}

// LoadTaskList returns the stored task list, or the default list when the
// blob is missing, unreadable or outside the 3..6 band.
func (s *LedgerStore) LoadTaskList(ctx context.Context) []string {
	raw, err := s.kv.Get(ctx, TaskListKey)
	if errors.Is(err, ErrNotFound) {
		return model.DefaultTasks()
	}
	if err != nil {
		s.logger.Error("failed to load task list", "error", err)
		return model.DefaultTasks()
	}

	var tasks []string
	if err := json.Unmarshal(raw, &tasks); err != nil {
		s.logger.Warn("task list is corrupt, using defaults", "error", err)
		return model.DefaultTasks()
	}
	if err := model.ValidateTaskList(tasks); err != nil {
		s.logger.Warn("stored task list is invalid, using defaults", "error", err)
		return model.DefaultTasks()
	}
	return tasks
}

func (s *LedgerStore) SaveTaskList(ctx context.Context, tasks []string) error {
	if err := model.ValidateTaskList(tasks); err != nil {
		return err
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, TaskListKey, raw); err != nil {
		s.logger.Error("failed to save task list", "error", err)
		return err
	}
	return nil
}
