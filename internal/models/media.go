package models

import "time"

// MediaAsset is an uploaded image (profile photo, course thumbnail).
type MediaAsset struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Bucket    string    `json:"bucket"`
	ObjectKey string    `json:"objectKey"`
	MIMEType  string    `json:"mimeType"`
	Format    string    `json:"format"`
	SizeBytes int64     `json:"sizeBytes"`
	Checksum  []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
