package model

import (
	"strings"
	"time"
)

// DocumentContentType is the only content type accepted for uploads.
const DocumentContentType = "application/pdf"

// Document is the metadata of one uploaded file.
// OwnerIdentifier is a soft reference to User.Identifier.
type Document struct {
	ID              uint      `json:"-" gorm:"primaryKey"`
	Filename        string    `json:"filename" gorm:"size:255;not null"`
	PeriodLabel     string    `json:"period_label" gorm:"size:128;not null"`
	OwnerIdentifier string    `json:"owner_identifier" gorm:"size:64;not null;index"`
	BlobRef         string    `json:"blob_ref" gorm:"uniqueIndex;size:255;not null"`
	CreatedAt       time.Time `json:"created_at"`
}

// BlobName returns the deterministic object name for an owner and period.
func BlobName(owner, period string) string {
	return owner + "_" + strings.ReplaceAll(period, "/", "-") + ".pdf"
}
