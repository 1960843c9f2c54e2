package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/pkg/httputil"
	"github.com/cheatloop/storefront/internal/pkg/logger"
	"github.com/cheatloop/storefront/internal/storage"
)

// maxImageUploadBytes caps a single image upload.
const maxImageUploadBytes = 10 << 20 // 10 MB

func imageKindParam(r *http.Request) (domain.ImageKind, bool) {
	switch chi.URLParam(r, "kind") {
	case string(domain.ImagePurchase):
		return domain.ImagePurchase, true
	case string(domain.ImageWinning):
		return domain.ImageWinning, true
	default:
		return "", false
	}
}

// requireImages rejects the request when the server runs without an object
// store (no S3 bucket configured). The rest of the API keeps working.
func (h *Handlers) requireImages(w http.ResponseWriter) bool {
	if h.images == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "image storage is not configured")
		return false
	}
	return true
}

// ListImages returns one image library, newest first.
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	if !h.requireImages(w) {
		return
	}
	kind, ok := imageKindParam(r)
	if !ok {
		httputil.BadRequest(w, "kind must be purchase or winning")
		return
	}

	images, err := h.images.List(r.Context(), kind)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"images": images, "count": len(images)})
}

// UploadImage accepts a multipart upload (field "image") plus optional
// product_title and description fields.
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireImages(w) {
		return
	}
	kind, ok := imageKindParam(r)
	if !ok {
		httputil.BadRequest(w, "kind must be purchase or winning")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		httputil.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.BadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes+1))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if len(data) > maxImageUploadBytes {
		httputil.Error(w, http.StatusRequestEntityTooLarge, "image exceeds 10 MB")
		return
	}

	img, err := h.images.Upload(r.Context(), storage.UploadInput{
		Kind:         kind,
		Name:         header.Filename,
		ProductTitle: r.FormValue("product_title"),
		Description:  r.FormValue("description"),
		ContentType:  header.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	logger.Info("image uploaded", "kind", kind, "image_id", img.ID, "bytes", len(data))
	httputil.Created(w, img)
}

// DeleteImage removes an image from storage and its record.
func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireImages(w) {
		return
	}
	if _, ok := imageKindParam(r); !ok {
		httputil.BadRequest(w, "kind must be purchase or winning")
		return
	}

	err := h.images.Delete(r.Context(), chi.URLParam(r, "imageId"))
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			httputil.NotFound(w, "image not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
