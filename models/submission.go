package models

import "time"

// Submission stages reported back to the caller
const (
	StageValidate = "validate"
	StageImages   = "images"
	StageRecord   = "record"
	StageDone     = "done"
)

// SubmitRequest represents one fabric submission with its local image files
type SubmitRequest struct {
	Record      FabricRecord
	Table       string   // sheet name or spreadsheet key
	ImagePaths  []string // first image becomes the main image
	ImageFolder string   // folder name or ID, empty for Drive root
	OwnerEmail  string   // optional ownership transfer target
}

// SubmitResult is returned by the catalog sync service for every submission
// that got past image upload. Stage tells which step failed when Success is false.
type SubmitResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Stage    string         `json:"stage"`
	Code     string         `json:"code"`
	Uploads  []UploadResult `json:"uploads,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// SubmissionLog represents a journaled submission outcome
type SubmissionLog struct {
	ID           string    `json:"id"`
	FabricCode   string    `json:"fabricCode"`
	TableRef     string    `json:"tableRef"`
	MainImageID  string    `json:"mainImageId"`
	WashImageIDs string    `json:"washImageIds"`
	Stage        string    `json:"stage"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"createdAt"`
}
