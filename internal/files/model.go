// Package files manages uploaded documents awaiting printing.
package files

import "time"

// File is an uploaded document.
type File struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	OriginalFilename string    `json:"original_filename"`
	StoredName       string    `json:"-"`
	ContentType      string    `json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	Pages            int       `json:"pages"`
	CreatedAt        time.Time `json:"created_at"`
}
