package models

import (
	"fmt"
	"time"
)

// ImageRef points at an image stored on the external image host.
type ImageRef struct {
	DisplayURL string
	DeleteURL  string
}

// Complete reports whether both URLs are present.
func (r ImageRef) Complete() bool {
	return r.DisplayURL != "" && r.DeleteURL != ""
}

// Classification is the backend's inference result for a session image.
type Classification struct {
	AcneType        string
	Confidence      float64
	Recommendations *string
}

// ConfidencePercent renders the confidence as a percentage with two
// decimals, e.g. 0.92 -> "92.00%".
func (c Classification) ConfidencePercent() string {
	return fmt.Sprintf("%.2f%%", c.Confidence*100)
}

// RecommendationsText returns the recommendations or "None".
func (c Classification) RecommendationsText() string {
	if c.Recommendations == nil || *c.Recommendations == "" {
		return "None"
	}
	return *c.Recommendations
}

// Session is a named unit of work owned by a user. It holds at most one
// image for its whole lifetime.
type Session struct {
	ID             string
	Name           string
	CreatedAt      time.Time
	Image          *ImageRef
	Classification *Classification
}

// Title is the name shown in listings.
func (s Session) Title() string {
	if s.Name == "" {
		return "Unnamed Session"
	}
	return s.Name
}

// SessionDetail is the backend's authoritative view of a single session.
type SessionDetail struct {
	Name           string
	CreatedAt      time.Time
	Image          *ImageRef
	Classification *Classification
}

// HasImage reports whether an image is already attached.
func (d *SessionDetail) HasImage() bool {
	return d != nil && d.Image != nil && d.Image.DisplayURL != ""
}

// ImageFile is a local file handed to the classification pipeline.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}
