package store

import (
	"time"
)

// Column names follow the provisioned schema, which is in French like the
// documents it stores.

// Client represents the 'clients' table.
type Client struct {
	ID        int64     `db:"id_client" json:"id_client"`
	Name      string    `db:"nom_client" json:"nom_client"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Project represents the 'dpgfs' table: one bid spreadsheet imported for a
// client. SourceFile is the dedup key within a client; a renamed file is a
// new project.
type Project struct {
	ID          int64      `db:"id_dpgf" json:"id_dpgf"`
	ClientID    int64      `db:"id_client" json:"id_client"`
	Name        string     `db:"nom_projet" json:"nom_projet"`
	ProjectDate *time.Time `db:"date_dpgf" json:"date_dpgf,omitempty"`
	OfferStatus string     `db:"statut_offre" json:"statut_offre"`
	SourceFile  string     `db:"fichier_source" json:"fichier_source"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

var (
	OfferStatusPending  = "en_cours"
	OfferStatusAccepted = "acceptee"
	OfferStatusRejected = "refusee"
)

// Lot represents the 'lots' table.
type Lot struct {
	ID        int64  `db:"id_lot" json:"id_lot"`
	ProjectID int64  `db:"id_dpgf" json:"id_dpgf"`
	Number    string `db:"numero_lot" json:"numero_lot"`
	Name      string `db:"nom_lot" json:"nom_lot"`
}

// Section represents the 'sections' table. ParentID is nil for top-level
// sections; Depth starts at 1.
type Section struct {
	ID       int64  `db:"id_section" json:"id_section"`
	LotID    int64  `db:"id_lot" json:"id_lot"`
	ParentID *int64 `db:"section_parent_id" json:"section_parent_id,omitempty"`
	Number   string `db:"numero_section" json:"numero_section"`
	Title    string `db:"titre_section" json:"titre_section"`
	Depth    int    `db:"niveau_hierarchique" json:"niveau_hierarchique"`
}

// Item represents the 'elements_ouvrage' table.
type Item struct {
	ID            int64   `db:"id_element" json:"id_element"`
	SectionID     int64   `db:"id_section" json:"id_section"`
	Designation   string  `db:"designation_exacte" json:"designation_exacte"`
	Unit          string  `db:"unite" json:"unite"`
	Quantity      float64 `db:"quantite" json:"quantite"`
	UnitPrice     float64 `db:"prix_unitaire_ht" json:"prix_unitaire_ht"`
	TotalPrice    float64 `db:"prix_total_ht" json:"prix_total_ht"`
	AcceptedOffer bool    `db:"offre_acceptee" json:"offre_acceptee"`
}

// ImportRecord represents the 'import_history' table: one row per file per
// import attempt.
type ImportRecord struct {
	ID              int64      `db:"id" json:"id"`
	RunID           string     `db:"run_id" json:"run_id"`
	SourceFile      string     `db:"source_file" json:"source_file"`
	Status          string     `db:"status" json:"status"`
	LotsCreated     int        `db:"lots_created" json:"lots_created"`
	SectionsCreated int        `db:"sections_created" json:"sections_created"`
	ItemsCreated    int        `db:"items_created" json:"items_created"`
	ErrorCount      int        `db:"error_count" json:"error_count"`
	StartedAt       time.Time  `db:"started_at" json:"started_at"`
	FinishedAt      *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

var (
	ImportStatusInProgress = "IN_PROGRESS"
	ImportStatusCompleted  = "COMPLETED"
	ImportStatusFailed     = "FAILED"
)
