// Package blob stores attachment bytes on the local filesystem under
// <root>/<room>/<stored name>.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
)

const thumbPrefix = "thumb_"

var (
	ErrTooLarge     = errors.New("blob: file too large")
	ErrBadName      = errors.New("blob: bad file name")
	ErrRangeInvalid = errors.New("blob: range not satisfiable")

	unsafeBase = regexp.MustCompile(`[^A-Za-z0-9_\-.]+`)
	unsafeExt  = regexp.MustCompile(`[^A-Za-z0-9.]+`)
)

type LocalStore struct {
	root     string
	baseURL  string
	maxBytes int64
}

// NewLocalStore keeps files under root and builds urls as baseURL/<room>/<name>.
func NewLocalStore(root, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

// SafeFilename keeps letters, digits, '_', '-' and '.'; anything else becomes '_'.
func SafeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	base = strings.Trim(unsafeBase.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "file"
	}
	ext = unsafeExt.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}
	return base + ext
}

// KindOf maps a mime type onto an attachment kind.
func KindOf(mimeType string) domain.AttachmentKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return domain.KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return domain.KindVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return domain.KindAudio
	default:
		return domain.KindFile
	}
}

func (s *LocalStore) roomDir(room domain.RoomCode) (string, error) {
	r := string(room)
	if r == "" || r == "." || r == ".." || strings.ContainsAny(r, `/\`) {
		return "", ErrBadName
	}
	return filepath.Join(s.root, r), nil
}

func (s *LocalStore) filePath(room domain.RoomCode, name string) (string, error) {
	dir, err := s.roomDir(room)
	if err != nil {
		return "", err
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrBadName
	}
	return filepath.Join(dir, name), nil
}

func (s *LocalStore) StoreAttachment(ctx context.Context, room domain.RoomCode, r io.Reader, filename, mimeType string) (domain.Attachment, error) {
	dir, err := s.roomDir(room)
	if err != nil {
		return domain.Attachment{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.Attachment{}, err
	}
	safe := SafeFilename(filename)
	stored := strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + "_" + safe
	full := filepath.Join(dir, stored)

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.Attachment{}, err
	}
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(full)
		return domain.Attachment{}, err
	}

	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = detectMime(full, safe)
	}
	log.Info().Str("module", "blob.local").Str("room", string(room)).Str("file", stored).Int64("bytes", n).Str("mime", mimeType).Msg("attachment stored")
	return domain.Attachment{
		Kind:       KindOf(mimeType),
		StoredName: stored,
		MimeType:   mimeType,
		URL:        fmt.Sprintf("%s/%s/%s", s.baseURL, room, stored),
	}, nil
}

// detectMime sniffs the content first and falls back to the extension.
func detectMime(full, name string) string {
	if m, err := mimetype.DetectFile(full); err == nil && m.String() != "application/octet-stream" {
		return strings.SplitN(m.String(), ";", 2)[0]
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return strings.SplitN(t, ";", 2)[0]
	}
	return "application/octet-stream"
}

func (s *LocalStore) DeleteAttachment(ctx context.Context, room domain.RoomCode, storedName string) error {
	var errs []error
	for _, name := range []string{storedName, thumbPrefix + storedName} {
		full, err := s.filePath(room, name)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Info().Str("module", "blob.local").Str("room", string(room)).Str("file", storedName).Msg("attachment deleted")
	return nil
}

func (s *LocalStore) ReadRange(ctx context.Context, room domain.RoomCode, storedName string, start, end int64) (core.BlobRange, error) {
	full, err := s.filePath(room, storedName)
	if err != nil {
		return core.BlobRange{}, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return core.BlobRange{}, fmt.Errorf("%w: %s/%s", core.ErrNotFound, room, storedName)
	}
	if err != nil {
		return core.BlobRange{}, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return core.BlobRange{}, err
	}
	size := st.Size()
	if end < 0 || end >= size {
		end = size - 1
	}
	if start < 0 || (size > 0 && start > end) || (size == 0 && start > 0) {
		f.Close()
		return core.BlobRange{Size: size}, ErrRangeInvalid
	}

	mimeType := mime.TypeByExtension(filepath.Ext(storedName))
	if mimeType == "" {
		mimeType = detectMime(full, storedName)
	}
	body := &sectionFile{
		SectionReader: io.NewSectionReader(f, start, max(0, end-start+1)),
		f:             f,
	}
	return core.BlobRange{Body: body, Start: start, End: end, Size: size, MimeType: mimeType}, nil
}

// sectionFile streams one range of an open file and closes the file with it.
type sectionFile struct {
	*io.SectionReader
	f *os.File
}

func (s *sectionFile) Close() error { return s.f.Close() }

