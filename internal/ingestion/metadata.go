package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes an ingested file
type Metadata struct {
	Filename  string `json:"filename"`
	Size      int    `json:"size"`
	Timestamp string `json:"timestamp"` // RFC3339 format
	Hash      string `json:"hash"`      // SHA256 hex digest of the raw content
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, filename string) *Metadata {
	return &Metadata{
		Filename:  filename,
		Size:      len(content),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
