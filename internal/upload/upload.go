// Package upload implements the upload gateway core: per-category validation
// of incoming files, collision-free storage key generation, and the on-disk
// destination layout (images/, documents/, soundfiles/). The same core backs
// the standalone gateway listener and the in-process interception middleware.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pbxadmin/internal/config"
)

// Category selects the validation rules and destination for an upload.
type Category string

const (
	// CategoryAudio covers PBX sound files (soundfiles destination).
	CategoryAudio Category = "audio"
	// CategoryDocImage covers dashboard documents and images; images route to
	// the images destination, everything else to documents.
	CategoryDocImage Category = "docimage"
)

const (
	// MaxAudioBytes is the size ceiling for sound file uploads.
	MaxAudioBytes = 10 << 20
	// MaxDocImageBytes is the size ceiling for document/image uploads.
	MaxDocImageBytes = 5 << 20
	// MaxBodyBytes is the transport-level body cap for gateway apps. Bodies
	// over this die in the transport before any handler runs; the tighter
	// per-category limits are enforced by Validate.
	MaxBodyBytes = MaxAudioBytes + 1<<20
)

const (
	dirImages     = "images"
	dirDocuments  = "documents"
	dirSoundFiles = "soundfiles"
)

// rules is the per-category allow-list: both the extension and the declared
// MIME type must match for a file to be accepted.
type rules struct {
	extensions map[string]bool
	mimeTypes  map[string]bool
	maxBytes   int64
}

var categoryRules = map[Category]rules{
	CategoryAudio: {
		extensions: set(".wav", ".mp3", ".ogg", ".m4a", ".aac"),
		mimeTypes: set(
			"audio/wav", "audio/x-wav", "audio/wave",
			"audio/mpeg", "audio/mp3",
			"audio/ogg", "application/ogg",
			"audio/mp4", "audio/x-m4a", "audio/m4a",
			"audio/aac", "audio/aacp",
		),
		maxBytes: MaxAudioBytes,
	},
	CategoryDocImage: {
		extensions: set(".jpg", ".jpeg", ".png", ".pdf"),
		mimeTypes: set(
			"image/jpeg", "image/jpg", "image/png",
			"application/pdf",
		),
		maxBytes: MaxDocImageBytes,
	},
}

var imageExtensions = set(".jpg", ".jpeg", ".png")

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// ValidationError describes a rejected upload. No side effects have occurred
// when it is returned; handlers map it to HTTP 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidationError reports whether err is a rejection of the upload itself
// rather than a storage failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks a file's extension, declared MIME type and size against the
// category allow-list. Both the extension and the MIME type must be listed.
func Validate(cat Category, originalName, mimeType string, size int64) error {
	r, ok := categoryRules[cat]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown upload category %q", cat)}
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" || !r.extensions[ext] {
		return &ValidationError{Reason: fmt.Sprintf("file type %q is not allowed", ext)}
	}

	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "" || !r.mimeTypes[mt] {
		return &ValidationError{Reason: fmt.Sprintf("content type %q is not allowed", mimeType)}
	}

	if size <= 0 {
		return &ValidationError{Reason: "file is empty"}
	}
	if size > r.maxBytes {
		return &ValidationError{Reason: fmt.Sprintf("file size %d exceeds limit of %d bytes", size, r.maxBytes)}
	}

	return nil
}

// GenerateKey builds a storage key that is unique per process and preserves
// the original extension: wall-clock millisecond timestamp plus a random
// suffix, so concurrent uploads of identically named files never collide.
func GenerateKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

// Result describes a stored upload.
type Result struct {
	// Key is the generated storage key (opaque filename).
	Key string
	// OriginalName is the caller-supplied filename, kept for display only.
	OriginalName string
	// Path is the resolved public path, e.g. /uploads/soundfiles/<key>.
	Path string
	// Size is the stored byte count.
	Size int64
}

// Service stores and removes gateway-managed files on local disk.
type Service struct {
	root       string
	publicBase string
}

// NewService creates a gateway service rooted at cfg.Dir. Destination
// directories are created lazily on first save.
func NewService(cfg config.UploadConfig) *Service {
	return &Service{root: cfg.Dir, publicBase: strings.TrimRight(cfg.PublicBase, "/")}
}

// Save validates the file and writes it under the category's destination
// directory with a generated key. Generated names are never caller-supplied,
// so an existing file is never overwritten; O_EXCL guards the invariant.
func (s *Service) Save(cat Category, originalName, mimeType string, size int64, r io.Reader) (*Result, error) {
	if r == nil {
		return nil, &ValidationError{Reason: "no file uploaded"}
	}
	if err := Validate(cat, originalName, mimeType, size); err != nil {
		return nil, err
	}

	dir := s.destinationDir(cat, originalName)
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	key := GenerateKey(originalName)
	dst := filepath.Join(s.root, dir, key)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create destination file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, size))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("write destination file: %w", err)
	}

	return &Result{
		Key:          key,
		OriginalName: originalName,
		Path:         s.publicBase + "/" + dir + "/" + key,
		Size:         written,
	}, nil
}

// RemoveSound deletes a sound file by its storage key. A missing file or a
// filesystem error is returned to the caller, who treats it as non-fatal.
func (s *Service) RemoveSound(key string) error {
	if !safeKey(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	if err := os.Remove(filepath.Join(s.root, dirSoundFiles, key)); err != nil {
		return fmt.Errorf("remove sound file: %w", err)
	}
	return nil
}

// SoundPath resolves a sound storage key to its public path.
func (s *Service) SoundPath(key string) string {
	return s.publicBase + "/" + dirSoundFiles + "/" + key
}

// Root returns the on-disk upload root (used by the standalone listener to
// serve /uploads statically).
func (s *Service) Root() string { return s.root }

func (s *Service) destinationDir(cat Category, originalName string) string {
	if cat == CategoryAudio {
		return dirSoundFiles
	}
	if imageExtensions[strings.ToLower(filepath.Ext(originalName))] {
		return dirImages
	}
	return dirDocuments
}

// safeKey rejects keys that could escape the destination directory. Keys are
// gateway-generated, so anything with a separator or traversal is hostile.
func safeKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return true
}
