package types

// Role identifies what a spreadsheet column holds once detection has run.
type Role int

const (
	RoleDesignation Role = iota
	RoleUnit
	RoleQuantity
	RoleUnitPrice
	RoleTotalPrice
)

var RoleNames = map[Role]string{
	RoleDesignation: "designation",
	RoleUnit:        "unit",
	RoleQuantity:    "quantity",
	RoleUnitPrice:   "unit_price",
	RoleTotalPrice:  "total_price",
}

// ColumnRoles maps each detected role to its zero-based column index.
// Roles that could not be bound are simply absent.
type ColumnRoles map[Role]int

type EventKind int

const (
	EventLot EventKind = iota
	EventSection
	EventItem
)

var EventKindNames = map[EventKind]string{
	EventLot:     "lot",
	EventSection: "section",
	EventItem:    "item",
}

// Event is one structural unit recognized in a sheet. Events of a detection
// are ordered by row index; only the fields of the active Kind are set.
// Row is -1 for events derived from the filename instead of the grid.
type Event struct {
	Kind EventKind
	Row  int

	LotNumber string
	LotName   string

	SectionNumber string
	SectionTitle  string
	Depth         int

	Designation string
	Unit        string
	Quantity    float64
	UnitPrice   float64
	TotalPrice  float64
}

// Detection is the full structural read of one sheet.
type Detection struct {
	SheetName string
	// HeaderRow is -1 when no header row scored high enough and column
	// roles were inferred from cell content instead.
	HeaderRow     int
	Columns       ColumnRoles
	LowConfidence bool
	ClientName    string
	ProjectName   string
	Events        []Event
}

// BatchStats captures the outcome of a single download/import/cleanup cycle.
type BatchStats struct {
	BatchNum            int      `json:"batchNum"`
	TotalFiles          int      `json:"totalFiles"`
	Downloaded          int      `json:"downloaded"`
	Imported            int      `json:"imported"`
	Failed              int      `json:"failed"`
	DownloadSizeMB      float64  `json:"downloadSizeMB"`
	DownloadDurationSec float64  `json:"downloadDurationSec"`
	ImportDurationSec   float64  `json:"importDurationSec"`
	CleanupDurationSec  float64  `json:"cleanupDurationSec"`
	Errors              []string `json:"errors"`
	Warnings            []string `json:"warnings"`
}

// Progress is the run ledger persisted after every batch. The orchestrator
// is its only writer; the API serves it read-only.
type Progress struct {
	RunID                 string      `json:"runId"`
	TotalBatches          int         `json:"totalBatches"`
	CurrentBatch          int         `json:"currentBatch"`
	TotalFiles            int         `json:"totalFiles"`
	FilesProcessed        int         `json:"filesProcessed"`
	FilesImported         int         `json:"filesImported"`
	FilesFailed           int         `json:"filesFailed"`
	TotalDownloadMB       float64     `json:"totalDownloadMB"`
	TotalDurationSec      float64     `json:"totalDurationSec"`
	EstimatedRemainingSec float64     `json:"estimatedRemainingSec"`
	LastBatchStats        *BatchStats `json:"lastBatchStats,omitempty"`
}
