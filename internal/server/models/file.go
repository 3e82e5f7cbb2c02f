// Package models defines server-side data models persisted by the catalogs.
package models

import "time"

// File is the catalog record of one stored upload. StorageKey names the blob
// holding the bytes; the JSON field names follow the public API, where
// "filename" is the storage key.
type File struct {
	ID           string    `json:"id" bson:"_id"`
	StorageKey   string    `json:"filename" bson:"storage_key"`
	OriginalName string    `json:"originalName" bson:"original_name"`
	ContentType  string    `json:"mimeType" bson:"content_type"`
	Size         int64     `json:"size" bson:"size"`
	UploadedAt   time.Time `json:"uploadDate" bson:"uploaded_at"`
}
