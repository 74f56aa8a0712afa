package model

// CurrentSchemaVersion is the ledger blob version written by this build.
const CurrentSchemaVersion = 1

// LedgerSchema is the persisted ledger blob.
type LedgerSchema struct {
	Version int           `json:"version"`
	Records []DailyRecord `json:"records"`
}

// DayStatus is the lifecycle state of a single date.
type DayStatus string

const (
	StatusUnsubmitted DayStatus = "UNSUBMITTED"
	StatusSealed      DayStatus = "SEALED"
)
