package slidefy

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ErrBadDataURL is returned by StoreDataURL for input that is not a
// well-formed data: URL. The cache is left unmodified.
var ErrBadDataURL = errors.New("slidefy: malformed data URL")

const defaultMediaType = "application/octet-stream"

// ArtifactCache re-hosts generated binary payloads behind stable ids.
// Entries live for the lifetime of the process and are never evicted; under
// sustained generation traffic this grows without bound. Callers wanting a
// different lifecycle own the instance.
type ArtifactCache struct {
	store *gocache.Cache
}

type cachedArtifact struct {
	data      []byte
	mediaType string
}

// NewArtifactCache returns an empty cache.
func NewArtifactCache() *ArtifactCache {
	return &ArtifactCache{store: gocache.New(gocache.NoExpiration, 0)}
}

// StoreBytes stores raw bytes under a fresh id.
func (a *ArtifactCache) StoreBytes(data []byte, mediaType string) string {
	if mediaType == "" {
		mediaType = defaultMediaType
	}
	id := newArtifactID()
	a.store.Set(id, cachedArtifact{data: data, mediaType: mediaType}, gocache.NoExpiration)
	return id
}

// StoreDataURL parses a "data:<mediaType>;base64,<payload>" URL and stores
// the decoded bytes. Malformed input fails with ErrBadDataURL and leaves the
// cache unmodified.
func (a *ArtifactCache) StoreDataURL(dataURL string) (string, error) {
	data, mediaType, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}
	return a.StoreBytes(data, mediaType), nil
}

// Get returns the stored bytes and media type, or ok=false for unknown ids.
func (a *ArtifactCache) Get(id string) (data []byte, mediaType string, ok bool) {
	v, found := a.store.Get(id)
	if !found {
		return nil, "", false
	}
	art := v.(cachedArtifact)
	return art.data, art.mediaType, true
}

// Len reports the number of stored artifacts.
func (a *ArtifactCache) Len() int {
	return a.store.ItemCount()
}

func newArtifactID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ParseDataURL splits a data: URL into payload bytes and media type.
func ParseDataURL(dataURL string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, "", fmt.Errorf("%w: missing data: prefix", ErrBadDataURL)
	}
	header, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, "", fmt.Errorf("%w: missing comma separator", ErrBadDataURL)
	}

	mediaType := defaultMediaType
	meta := strings.TrimPrefix(header, "data:")
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		meta = meta[:semi]
	}
	if meta != "" {
		mediaType = meta
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base64: %v", ErrBadDataURL, err)
	}
	return data, mediaType, nil
}
