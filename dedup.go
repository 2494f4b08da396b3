package slidefy

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
)

// dedupThreshold is the maximum Hamming distance between two dHash values
// below which images are considered perceptually identical.
const dedupThreshold = 10

// dedupFilter is a per-aggregation deduplication filter based on perceptual
// hashing. It is safe for concurrent use.
type dedupFilter struct {
	mu     sync.Mutex
	hashes []*goimagehash.ImageHash
}

// isDuplicate returns true if img is perceptually identical to a previously
// seen image. If hashing fails for any reason, the image is accepted
// (graceful degradation). When the image is accepted as unique, its hash is
// stored for future comparisons.
func (d *dedupFilter) isDuplicate(img image.Image) bool {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range d.hashes {
		dist, err := hash.Distance(h)
		if err == nil && dist < dedupThreshold {
			return true
		}
	}

	d.hashes = append(d.hashes, hash)
	return false
}

// perceptualDedup drops candidates whose display image is a visual duplicate
// of an earlier candidate. Providers often index the same underlying photo
// under different ids; key dedup cannot catch those. Any failure to download
// or decode keeps the candidate.
func (cfg *Config) perceptualDedup(ctx context.Context, candidates []Candidate) []Candidate {
	filter := &dedupFilter{}
	kept := candidates[:0]
	for _, c := range candidates {
		img := cfg.decodeForDedup(ctx, c.RegularURL)
		if img != nil && filter.isDuplicate(img) {
			slog.Debug("slidefy: perceptual dedup rejected", "url", c.RegularURL)
			continue
		}
		kept = append(kept, c)
	}
	return reindex(kept)
}

// decodeForDedup fetches and decodes the image at url.
// Returns nil on any recoverable failure for graceful degradation.
func (cfg *Config) decodeForDedup(ctx context.Context, url string) image.Image {
	result, err := cfg.Download(ctx, url, DownloadOpts{MaxBytes: 512 * 1024})
	if err != nil || result == nil {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		return nil
	}
	return img
}
