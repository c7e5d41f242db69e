// Package formats rewrites media URLs so they carry a decoded signature.
package formats

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/ytget/ytcipher/internal/logger"
	"github.com/ytget/ytcipher/types"
	"github.com/ytget/ytcipher/youtube/cipher"
)

const (
	rateBypassParam = "ratebypass"
	rateBypassValue = "yes"
)

// manifestSigRe matches the scrambled signature segment of a manifest URL.
var manifestSigRe = regexp.MustCompile(`/s/([^/]+)/`)

// CipherSource supplies the cipher for a player script.
// *player.Loader implements it.
type CipherSource interface {
	Cipher(ctx context.Context, scriptIdentity string) (*cipher.Cipher, error)
}

// Resolver applies player ciphers to playback and manifest URLs. The cipher
// is only requested when a URL actually carries a scrambled signature.
type Resolver struct {
	source CipherSource
}

// NewResolver creates a Resolver backed by source.
func NewResolver(source CipherSource) *Resolver {
	return &Resolver{source: source}
}

// Decode returns token decoded with the cipher of scriptIdentity.
func (r *Resolver) Decode(ctx context.Context, token, scriptIdentity string) (string, error) {
	c, err := r.source.Cipher(ctx, scriptIdentity)
	if err != nil {
		return "", err
	}
	return c.Apply(token), nil
}

// ResolvePlaybackURL returns the URL to fetch f from. Without a signature the
// base URL is returned as is. Otherwise the decoded signature is set under
// f.SignatureKey() together with ratebypass=yes; other query parameters keep
// their order and encoding.
//
// f.URL is parsed first, so an unparsable base URL is INVALID_URL whether or
// not f carries a signature. No cipher lookup happens in that case.
func (r *Resolver) ResolvePlaybackURL(ctx context.Context, f types.Format, scriptIdentity string) (*url.URL, error) {
	u, err := url.Parse(f.URL)
	if err != nil {
		return nil, cipher.Wrap(cipher.ErrCodeInvalidURL, "failed to parse playback url", err)
	}
	if !f.HasSignature() {
		return u, nil
	}

	sig, err := r.Decode(ctx, f.Signature, scriptIdentity)
	if err != nil {
		return nil, err
	}

	u.RawQuery = setQueryParams(u.RawQuery,
		[2]string{rateBypassParam, rateBypassValue},
		[2]string{f.SignatureKey(), sig},
	)

	logger.WithComponent(logger.ComponentFormat).Trace("Resolved playback url", map[string]interface{}{
		"itag":   f.Itag,
		"script": scriptIdentity,
	})
	return u, nil
}

// setQueryParams drops every existing pair whose key is set by pairs and
// appends pairs in order. Remaining pairs are left untouched.
func setQueryParams(rawQuery string, pairs ...[2]string) string {
	drop := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		drop[p[0]] = true
	}

	var parts []string
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, _, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if drop[key] {
			continue
		}
		parts = append(parts, part)
	}
	for _, p := range pairs {
		parts = append(parts, url.QueryEscape(p[0])+"="+url.QueryEscape(p[1]))
	}
	return strings.Join(parts, "&")
}

// ResolveManifestURL replaces the first "/s/<token>/" segment of manifest
// with "/signature/<decoded>/". A manifest without that segment is returned
// unchanged.
func (r *Resolver) ResolveManifestURL(ctx context.Context, manifest, scriptIdentity string) (string, error) {
	m := manifestSigRe.FindStringSubmatchIndex(manifest)
	if m == nil {
		return manifest, nil
	}

	sig, err := r.Decode(ctx, manifest[m[2]:m[3]], scriptIdentity)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(manifest) + len(sig))
	b.WriteString(manifest[:m[0]])
	b.WriteString("/signature/")
	b.WriteString(sig)
	b.WriteString("/")
	b.WriteString(manifest[m[1]:])
	return b.String(), nil
}

// ParseSignatureCipher turns a signatureCipher value ("s=...&sp=...&url=...")
// into a Format. url is required; s and sp are optional.
func ParseSignatureCipher(raw string) (types.Format, error) {
	q, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return types.Format{}, cipher.Wrap(cipher.ErrCodeInvalidURL, "failed to parse signatureCipher", err)
	}
	base := q.Get("url")
	if base == "" {
		return types.Format{}, cipher.NewError(cipher.ErrCodeInvalidURL, "signatureCipher has no url")
	}
	f := types.Format{
		URL:            base,
		Signature:      q.Get("s"),
		SignatureParam: q.Get("sp"),
	}
	if u, err := url.Parse(base); err == nil {
		bq := u.Query()
		f.Itag, _ = strconv.Atoi(bq.Get("itag"))
		f.MimeType = bq.Get("mime")
	}
	return f, nil
}

