// Package upload accepts video files and produces playable handles.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/motionlab/internal/domain/model"
)

// DefaultMaxBytes is 500 MiB. A file of exactly this size is accepted.
const DefaultMaxBytes int64 = 500 << 20

// Source is how the file reached the page.
type Source string

// Sources.
const (
	SourcePicker Source = "picker"
	SourceDrop   Source = "drop"
)

// Errors.
var (
	ErrTooLarge      = errors.New("upload too large")
	ErrNotVideo      = errors.New("upload is not a video")
	ErrUnknownSource = errors.New("unknown upload source")
)

// RejectError carries the message shown to the user.
type RejectError struct {
	Kind    error
	Message string
}

func (e *RejectError) Error() string { return e.Message }

// Unwrap returns the kind for errors.Is.
func (e *RejectError) Unwrap() error { return e.Kind }

// File describes a received file.
type File struct {
	Name      string
	Size      int64
	MediaType string
	Ref       string
	Source    Source
}

// Policy holds the acceptance rules.
type Policy struct {
	MaxBytes int64
	// RequireVideoType extends the video/* check to picker uploads.
	RequireVideoType bool
}

// DefaultPolicy accepts up to 500 MiB and checks the type of drops only.
func DefaultPolicy() Policy {
	return Policy{MaxBytes: DefaultMaxBytes}
}

// ParseSource maps a query value onto a Source. Empty means picker.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(s)) {
	case "", SourcePicker:
		return SourcePicker, nil
	case SourceDrop:
		return SourceDrop, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// Validate applies p to f. Drops must carry a video/* media type; picker
// uploads are only type checked when the policy asks for it.
func Validate(f File, p Policy) (model.VideoHandle, error) {
	if p.MaxBytes <= 0 {
		p.MaxBytes = DefaultMaxBytes
	}
	if f.Size > p.MaxBytes {
		return model.VideoHandle{}, tooLarge(p.MaxBytes)
	}
	if (f.Source == SourceDrop || p.RequireVideoType) && !IsVideo(f.MediaType) {
		return model.VideoHandle{}, &RejectError{Kind: ErrNotVideo, Message: "Please choose a video file."}
	}
	return model.VideoHandle{
		FileRef:     f.Ref,
		DisplayName: f.Name,
		ByteSize:    f.Size,
		MediaType:   f.MediaType,
	}, nil
}

// IsVideo reports whether mediaType is video/*.
func IsVideo(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	return err == nil && strings.HasPrefix(mt, "video/")
}

// MediaType returns declared when set, otherwise a guess from the name.
func MediaType(declared, name string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if guess := mime.TypeByExtension(filepath.Ext(name)); guess != "" {
		return guess
	}
	return declared
}

// Spool copies r into a new file under dir, reading at most maxBytes+1
// bytes. It returns the file path and the byte count. An oversized body is
// removed and reported as ErrTooLarge.
func Spool(r io.Reader, dir string, maxBytes int64) (string, int64, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "motionlab-upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}
	n, copyErr := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(f.Name())
		return "", 0, fmt.Errorf("write upload file: %w", err)
	}
	if n > maxBytes {
		_ = os.Remove(f.Name())
		return "", n, tooLarge(maxBytes)
	}
	return f.Name(), n, nil
}

// Discard removes the file behind h. A missing file is not an error.
func Discard(h model.VideoHandle) error {
	if h.FileRef == "" {
		return nil
	}
	if err := os.Remove(h.FileRef); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func tooLarge(maxBytes int64) error {
	return &RejectError{
		Kind:    ErrTooLarge,
		Message: fmt.Sprintf("File size exceeds %dMB. Please upload a smaller file.", maxBytes>>20),
	}
}
