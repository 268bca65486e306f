// Package render turns user-written Markdown into sanitized HTML.
package render

import (
	"bytes"
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  *lru.Cache[[sha256.Size]byte, string]
}

// New returns a Renderer caching up to cacheSize rendered documents.
// A cacheSize <= 0 disables caching.
func New(cacheSize int) (*Renderer, error) {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoReferrerOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				renderer.WithNodeRenderers(util.Prioritized(rawHTMLAsText{}, 100)),
			),
		),
		policy: policy,
	}
	if cacheSize > 0 {
		c, err := lru.New[[sha256.Size]byte, string](cacheSize)
		if err != nil {
			return nil, err
		}
		r.cache = c
	}
	return r, nil
}

func (r *Renderer) HTML(source string) string {
	if source == "" {
		return ""
	}
	key := sha256.Sum256([]byte(source))
	if r.cache != nil {
		if out, ok := r.cache.Get(key); ok {
			return out
		}
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return r.policy.Sanitize(source)
	}
	out := r.policy.SanitizeBytes(buf.Bytes())

	if r.cache != nil {
		r.cache.Add(key, string(out))
	}
	return string(out)
}

func (r *Renderer) Cached() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}
