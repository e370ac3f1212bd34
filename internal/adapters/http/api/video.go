package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/upload"
	"github.com/okian/motionlab/pkg/metrics"
)

// videoField is the multipart field carrying the file.
const videoField = "video"

// videoHandler accepts, streams back and removes the client's video.
type videoHandler struct {
	deps    Dependencies
	policy  upload.Policy
	dir     string
	timeout time.Duration
}

// multipartOverhead is the room left above the file cap for boundaries,
// part headers and small form fields.
const multipartOverhead = 64 << 10

// HandleUpload handles POST /api/video?source=picker|drop. The file part is
// spooled to disk with a hard cap so an oversized upload never lands whole.
func (h *videoHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	src := upload.SourcePicker
	if raw := r.URL.Query().Get("source"); raw != "" {
		parsed, err := upload.ParseSource(raw)
		if err != nil {
			metrics.RecordUpload("bad_request", 0)
			writeErr(w, err)
			return
		}
		src = parsed
	}

	if h.timeout > 0 {
		setReadDeadline(w, h.timeout)
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.policy.MaxBytes+multipartOverhead)

	f, err := h.receive(r, src)
	if err != nil {
		metrics.RecordUpload(uploadOutcome(err), 0)
		writeErr(w, err)
		return
	}

	handle, err := upload.Validate(f, h.policy)
	if err != nil {
		_ = upload.Discard(model.VideoHandle{FileRef: f.Ref})
		metrics.RecordUpload(uploadOutcome(err), f.Size)
		writeErr(w, err)
		return
	}

	st, err := h.deps.SelectVideo(r.Context(), clientIDFrom(r), handle)
	if err != nil {
		_ = upload.Discard(handle)
		metrics.RecordUpload("error", f.Size)
		writeErr(w, err)
		return
	}
	metrics.RecordUpload("accepted", handle.ByteSize)
	writeJSON(w, http.StatusOK, st)
}

// receive finds the video part and spools it.
func (h *videoHandler) receive(r *http.Request, src upload.Source) (upload.File, error) {
	f, err := h.readParts(r, src)
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return upload.File{}, fmt.Errorf("%w: request body over %d bytes", upload.ErrTooLarge, maxErr.Limit)
	case errors.Is(err, os.ErrDeadlineExceeded):
		return upload.File{}, fmt.Errorf("%w: %w", ErrUploadTimeout, err)
	}
	return f, err
}

func (h *videoHandler) readParts(r *http.Request, src upload.Source) (upload.File, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return upload.File{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return upload.File{}, fmt.Errorf("%w: missing %q file field", ErrBadRequest, videoField)
		}
		if err != nil {
			return upload.File{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if part.FormName() != videoField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		name := part.FileName()
		ref, n, err := upload.Spool(part, h.dir, h.policy.MaxBytes)
		_ = part.Close()
		if err != nil {
			return upload.File{}, err
		}
		return upload.File{
			Name:      name,
			Size:      n,
			MediaType: upload.MediaType(part.Header.Get("Content-Type"), name),
			Ref:       ref,
			Source:    src,
		}, nil
	}
}

func uploadOutcome(err error) string {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return "too_large"
	case errors.Is(err, upload.ErrNotVideo):
		return "not_video"
	case errors.Is(err, ErrUploadTimeout):
		return "timeout"
	case errors.Is(err, ErrBadRequest), errors.Is(err, upload.ErrUnknownSource):
		return "bad_request"
	}
	return "error"
}

// HandlePreview handles GET /api/video, streaming the file with range
// support for the preview player.
func (h *videoHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	v, ok := h.deps.Video(clientIDFrom(r))
	if !ok {
		writeErr(w, fmt.Errorf("%w: no video uploaded", ErrNotFound))
		return
	}
	f, err := os.Open(v.FileRef)
	if err != nil {
		writeErr(w, fmt.Errorf("%w: video file gone", ErrNotFound))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", v.MediaType)
	http.ServeContent(w, r, v.DisplayName, info.ModTime(), f)
}

// HandleRemove handles DELETE /api/video.
func (h *videoHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.RemoveVideo(r.Context(), clientIDFrom(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
