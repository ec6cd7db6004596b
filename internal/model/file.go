package model

import "time"

// Recognition and review states written by the placeholder recognizer.
const (
	RecognitionProcessed = "Processed"
	ReviewPending        = "Pending Review"
	ReviewerOCRSystem    = "OCR System"
)

// History actions.
const (
	ActionCreate         = "create"
	ActionModify         = "modify"
	ActionAutoConfirm    = "auto_confirm_enabled"
	ActionDocumentUpload = "document_upload"
	ActionRecognition    = "recognition"
)

// File is a proof-of-delivery document record. Recognition fields are nullable
// until a recognition run or a user fills them.
type File struct {
	ID                int64      `json:"id"`
	FileID            string     `json:"file_id"`
	Filename          string     `json:"filename"`
	BLNumber          string     `json:"bl_number"`
	ShipTo            *string    `json:"ship_to"`
	Carrier           *string    `json:"carrier"`
	StampType         *string    `json:"stamp_type"`
	PODDate           *time.Time `json:"pod_date"`
	Signature         *string    `json:"signature"`
	IssuedQty         *int       `json:"issued_qty"`
	ReceivedQty       *int       `json:"received_qty"`
	NoneQty           *int       `json:"none_qty"`
	DamaQty           *int       `json:"dama_qty"`
	ShortQty          *int       `json:"short_qty"`
	OveraQty          *int       `json:"overa_qty"`
	RefusQty          *int       `json:"refus_qty"`
	SealI             *string    `json:"seal_i"`
	RecognitionStatus string     `json:"recognition_status"`
	ReviewStatus      string     `json:"review_status"`
	ReviewedBy        *string    `json:"reviewed_by"`
	AutoConfirm       bool       `json:"auto_confirm"`
	DocumentPath      *string    `json:"document_path,omitempty"`
	CreatedOn         time.Time  `json:"created_on"`
	ChangedOn         *time.Time `json:"changed_on"`
	UserID            int64      `json:"user_id"`
}

// FileHistory is an append-only log entry for one file.
type FileHistory struct {
	ID        int64     `json:"id"`
	FileID    int64     `json:"-"`
	Action    string    `json:"action"`
	Details   *string   `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// FileFilter narrows an owner-scoped file search. Empty fields are ignored.
type FileFilter struct {
	FileID            string
	BLNumber          string
	Filename          string
	RecognitionStatus string
	ReviewStatus      string
	ShipTo            string
	Carrier           string
	ChangedOn         *time.Time
	CreatedOn         *time.Time
}
