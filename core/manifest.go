package core

import "time"

// ManifestEntry holds lightweight metadata for a single archived report, used by
// the manifest file and the archive index template. It mirrors the fields of
// Report that the index page needs, without carrying the body.
type ManifestEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Focus       string    `json:"focus,omitempty"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Usage       *Usage    `json:"usage,omitempty"`
	Words       int       `json:"words"`
	Href        string    `json:"href"`
}

// NewManifestEntry extracts metadata from a Report and pairs it with the given
// href (relative link to the rendered page).
func NewManifestEntry(r *Report, href string) ManifestEntry {
	return ManifestEntry{
		ID:          r.ID,
		Title:       r.Title,
		Focus:       r.Focus,
		Model:       r.Model,
		GeneratedAt: r.GeneratedAt,
		Usage:       r.Usage,
		Words:       countWords(r.Body),
		Href:        href,
	}
}
