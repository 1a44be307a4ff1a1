// Package imagehost uploads session images to an external host and returns
// the URLs under which they can be displayed and deleted.
package imagehost

import (
	"context"

	"github.com/dmitrijs2005/skincare/internal/client/models"
)

// Uploader stores one image. Hosts report whatever URLs they produced;
// deciding whether the answer is complete is left to the caller.
type Uploader interface {
	Upload(ctx context.Context, file models.ImageFile) (models.ImageRef, error)
}
