package entity

import (
	"path/filepath"
	"strings"
)

// MaxDocumentSize is the default upload limit: 5 MiB
const MaxDocumentSize int64 = 5 * 1024 * 1024

// Supported supporting-document extensions
const (
	ExtensionPDF  = ".pdf"
	ExtensionWord = ".docx"
	ExtensionXLSX = ".xlsx"
)

// DefaultDocumentExtensions returns the extensions the picker offers by default
func DefaultDocumentExtensions() []string {
	return []string{ExtensionPDF, ExtensionWord, ExtensionXLSX}
}

// Document describes a supporting file by reference; its content is never read
type Document struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
}

// DocumentExtension returns the lower-cased extension of path including the dot
func DocumentExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// HasAllowedExtension reports whether path ends in one of allowed (case-insensitive)
func HasAllowedExtension(path string, allowed []string) bool {
	ext := DocumentExtension(path)
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}
