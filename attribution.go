package slidefy

import (
	"bytes"
	"context"

	"github.com/bep/imagemeta"
)

// Attribution holds creator/credit fields extracted from EXIF, IPTC and XMP
// metadata embedded in image binary data.
type Attribution struct {
	EXIFArtist    string
	EXIFCopyright string
	IPTCByline    string
	IPTCCredit    string
	XMPCreator    string
	XMPRights     string
}

// Creator returns the best available creator name, preferring IPTC byline.
func (a *Attribution) Creator() string {
	if a == nil {
		return ""
	}
	for _, f := range []string{a.IPTCByline, a.EXIFArtist, a.XMPCreator, a.IPTCCredit} {
		if f != "" {
			return f
		}
	}
	return ""
}

// attributionTags maps (source, tag-name) → true for every tag we care about.
var attributionTags = map[imagemeta.Source]map[string]bool{
	imagemeta.IPTC: {
		"Byline": true,
		"Credit": true,
	},
	imagemeta.EXIF: {
		"Artist":    true,
		"Copyright": true,
	},
	imagemeta.XMP: {
		"Creator": true,
		"Rights":  true,
	},
}

// ExtractAttribution parses creator metadata from raw image bytes.
// Returns nil if the data is nil, empty, or cannot be parsed.
// Graceful degradation: never returns an error.
func ExtractAttribution(data []byte) *Attribution {
	if len(data) == 0 {
		return nil
	}

	attr := &Attribution{}
	found := false

	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := attributionTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := tagValueString(ti.Value)
			if s == "" {
				return nil
			}
			switch {
			case ti.Source == imagemeta.IPTC && ti.Tag == "Byline":
				attr.IPTCByline = s
			case ti.Source == imagemeta.IPTC && ti.Tag == "Credit":
				attr.IPTCCredit = s
			case ti.Source == imagemeta.EXIF && ti.Tag == "Artist":
				attr.EXIFArtist = s
			case ti.Source == imagemeta.EXIF && ti.Tag == "Copyright":
				attr.EXIFCopyright = s
			case ti.Source == imagemeta.XMP && ti.Tag == "Creator":
				attr.XMPCreator = s
			case ti.Source == imagemeta.XMP && ti.Tag == "Rights":
				attr.XMPRights = s
			default:
				return nil
			}
			found = true
			return nil
		},
	})

	if err != nil || !found {
		return nil
	}

	return attr
}

// tagValueString extracts a string from a tag value.
// XMP values may be string or []string (from altList/seqList).
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}

// enrichAttribution backfills a candidate's photographer field from embedded
// image metadata when the provider response carried none. Failures leave the
// candidate untouched.
func (cfg *Config) enrichAttribution(ctx context.Context, c *Candidate) {
	if c.Photographer != "" {
		return
	}
	result, err := cfg.Download(ctx, c.RegularURL, DownloadOpts{MaxBytes: 512 * 1024})
	if err != nil || result == nil {
		return
	}
	if creator := ExtractAttribution(result.Data).Creator(); creator != "" {
		c.Photographer = creator
	}
}
