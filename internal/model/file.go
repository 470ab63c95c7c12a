package model

import "github.com/google/uuid"

// File is an uploaded avatar or portfolio attachment. Bytes live either in
// Content or in object storage under StorageObjectName.
type File struct {
	ID                int       `gorm:"primaryKey" json:"id"`
	Content           []byte    `json:"-"`
	Extension         string    `gorm:"type:text" json:"extension"`
	ContentType       string    `gorm:"type:text" json:"content_type"`
	StorageObjectName *string   `gorm:"type:text" json:"-"`
	OwnerID           uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
}
