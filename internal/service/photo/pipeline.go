package photo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"clothcycle/internal/blob"
	"clothcycle/internal/domain"
	"github.com/google/uuid"
)

const (
	// MaxFileSize is the per-file ceiling.
	MaxFileSize = 5 << 20
	// MaxPhotos caps the staged sequence.
	MaxPhotos = 6
)

// ErrTooManyPhotos rejects a whole batch that would overflow the sequence.
var ErrTooManyPhotos = errors.New("too many photos")

var acceptedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// File is one user-submitted upload candidate.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Rejected names a file that did not make it into the staged sequence and
// why.
type Rejected struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type staged struct {
	photo domain.Photo
	data  []byte
}

// Pipeline stages, normalizes, and uploads photos. It exclusively owns the
// staged binaries until Commit hands them to blob storage. Sequence order is
// preserved across add and remove; index 0 is the cover image.
type Pipeline struct {
	normalizer Normalizer
	blobs      blob.Store
	items      []staged
}

func NewPipeline(normalizer Normalizer, blobs blob.Store) *Pipeline {
	return &Pipeline{normalizer: normalizer, blobs: blobs}
}

// Accept validates and stages a batch. The whole batch is rejected when it
// would overflow MaxPhotos; otherwise each file is checked individually and
// the failures come back with named reasons. Accepted files are normalized;
// a file that cannot be decoded is kept as-is rather than rejected.
func (p *Pipeline) Accept(files []File) ([]domain.Photo, []Rejected, error) {
	if len(p.items)+len(files) > MaxPhotos {
		return nil, nil, fmt.Errorf("%w: at most %d photos", ErrTooManyPhotos, MaxPhotos)
	}

	var accepted []domain.Photo
	var rejected []Rejected
	for _, f := range files {
		if _, ok := acceptedTypes[f.ContentType]; !ok {
			rejected = append(rejected, Rejected{
				Name:   f.Name,
				Reason: fmt.Sprintf("%s is not a supported format. Please use JPEG, PNG, or WebP.", f.Name),
			})
			continue
		}
		if len(f.Data) > MaxFileSize {
			rejected = append(rejected, Rejected{
				Name:   f.Name,
				Reason: fmt.Sprintf("%s exceeds 5MB. Please choose a smaller file.", f.Name),
			})
			continue
		}

		data, contentType := f.Data, f.ContentType
		if normalized, ct, err := p.normalizer.Normalize(f.Data); err == nil {
			data, contentType = normalized, ct
		}

		item := staged{
			photo: domain.Photo{
				ID:          uuid.NewString(),
				Filename:    f.Name,
				ContentType: contentType,
			},
			data: data,
		}
		p.items = append(p.items, item)
		accepted = append(accepted, item.photo)
	}
	return accepted, rejected, nil
}

// Remove releases the staged binary and drops the photo, preserving the
// order of the remaining sequence.
func (p *Pipeline) Remove(id string) {
	kept := p.items[:0]
	for i := range p.items {
		if p.items[i].photo.ID == id {
			p.items[i].data = nil
			continue
		}
		kept = append(kept, p.items[i])
	}
	p.items = kept
}

// Commit uploads one staged photo under a name derived from its id and
// original extension, records the durable URL, and releases the binary.
// Upload errors propagate to the caller; there is no automatic retry.
func (p *Pipeline) Commit(ctx context.Context, id, bucket string) (string, error) {
	for i := range p.items {
		if p.items[i].photo.ID != id {
			continue
		}
		if p.items[i].photo.Uploaded {
			return p.items[i].photo.URL, nil
		}
		objectPath := id + extensionFor(p.items[i].photo)
		url, err := p.blobs.Upload(ctx, bucket, objectPath, p.items[i].data, p.items[i].photo.ContentType)
		if err != nil {
			return "", fmt.Errorf("upload photo %s: %w", id, err)
		}
		p.items[i].photo.Uploaded = true
		p.items[i].photo.URL = url
		p.items[i].data = nil
		return url, nil
	}
	return "", domain.ErrNotFound
}

// Photos returns the staged sequence in order.
func (p *Pipeline) Photos() []domain.Photo {
	out := make([]domain.Photo, len(p.items))
	for i := range p.items {
		out[i] = p.items[i].photo
	}
	return out
}

func extensionFor(ph domain.Photo) string {
	if ext, ok := acceptedTypes[ph.ContentType]; ok {
		return ext
	}
	if ext := strings.ToLower(path.Ext(ph.Filename)); ext != "" {
		return ext
	}
	return ".jpg"
}
