package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/common"
)

// ImgBB uploads through the ImgBB v1 API.
type ImgBB struct {
	url     string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

type imgbbResponse struct {
	Data struct {
		DisplayURL string `json:"display_url"`
		DeleteURL  string `json:"delete_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// NewImgBB builds an uploader. perMinute <= 0 disables rate limiting.
func NewImgBB(url, apiKey string, perMinute int, client *http.Client) *ImgBB {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return &ImgBB{url: url, apiKey: apiKey, client: client, limiter: limiter}
}

func (h *ImgBB) Upload(ctx context.Context, file models.ImageFile) (models.ImageRef, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return models.ImageRef{}, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", file.Name)
	if err != nil {
		return models.ImageRef{}, err
	}
	if _, err := part.Write(file.Data); err != nil {
		return models.ImageRef{}, err
	}
	if err := mw.WriteField("key", h.apiKey); err != nil {
		return models.ImageRef{}, err
	}
	if err := mw.Close(); err != nil {
		return models.ImageRef{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, &buf)
	if err != nil {
		return models.ImageRef{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("%w: imgbb: %w", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("%w: imgbb: %w", common.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ImageRef{}, fmt.Errorf("%w: imgbb: %s", common.ErrTransport, resp.Status)
	}

	var out imgbbResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return models.ImageRef{}, fmt.Errorf("%w: imgbb: bad response: %w", common.ErrTransport, err)
	}

	return models.ImageRef{DisplayURL: out.Data.DisplayURL, DeleteURL: out.Data.DeleteURL}, nil
}
