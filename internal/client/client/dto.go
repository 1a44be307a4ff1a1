package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/skincare/internal/client/models"
)

type verifyTokenRequest struct {
	IDToken string `json:"idToken"`
}

type verifyTokenResponse struct {
	UID string `json:"uid"`
}

type uidRequest struct {
	UID string `json:"uid"`
}

type userInfoResponse struct {
	Name string `json:"name"`
}

type updateNameRequest struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

type sessionItem struct {
	ID        string    `json:"session_id"`
	Name      string    `json:"session_name"`
	CreatedAt timestamp `json:"created_at"`
}

type sessionsResponse struct {
	Sessions []sessionItem `json:"sessions"`
}

type startSessionRequest struct {
	UID  string `json:"uid"`
	Name string `json:"session_name"`
}

type startSessionResponse struct {
	SessionID string `json:"session_id"`
}

type imageURL struct {
	URL       string `json:"url"`
	DeleteURL string `json:"delete_url"`
}

type uploadImageRequest struct {
	UID       string     `json:"uid"`
	ImageURLs []imageURL `json:"image_urls"`
}

type classificationResults struct {
	AcneType        string  `json:"acne_type"`
	Confidence      float64 `json:"confidence"`
	Recommendations *string `json:"recommendations"`
}

type sessionDetailResponse struct {
	Name           string                 `json:"session_name"`
	CreatedAt      timestamp              `json:"created_at"`
	ImageURL       string                 `json:"image_url"`
	DeleteURL      string                 `json:"delete_url"`
	Classification *classificationResults `json:"classification_results"`
}

func (r sessionDetailResponse) toModel() *models.SessionDetail {
	d := &models.SessionDetail{
		Name:      r.Name,
		CreatedAt: time.Time(r.CreatedAt),
	}
	if r.ImageURL != "" {
		d.Image = &models.ImageRef{DisplayURL: r.ImageURL, DeleteURL: r.DeleteURL}
	}
	if r.Classification != nil {
		d.Classification = &models.Classification{
			AcneType:        r.Classification.AcneType,
			Confidence:      r.Classification.Confidence,
			Recommendations: r.Classification.Recommendations,
		}
	}
	return d
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timestamp accepts the date formats the backend has been seen to emit.
// Unparseable or null values decode to the zero time.
type timestamp time.Time

func (t *timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var secs float64
		if err2 := json.Unmarshal(b, &secs); err2 != nil {
			return fmt.Errorf("invalid timestamp %s", b)
		}
		*t = timestamp(time.UnixMilli(int64(secs * 1000)).UTC())
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = timestamp(v)
			return nil
		}
	}
	*t = timestamp{}
	return nil
}
