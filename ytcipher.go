package ytcipher

import (
	"context"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ytget/ytcipher/client"
	"github.com/ytget/ytcipher/types"
	"github.com/ytget/ytcipher/youtube/cipher"
	"github.com/ytget/ytcipher/youtube/formats"
	"github.com/ytget/ytcipher/youtube/player"
)

// Format references a media resource and its scrambled signature.
type Format = types.Format

// Resolver provides a high-level API for decoding signatures and resolving
// media URLs. Use chainable setters to configure it before first use; a
// Resolver is safe for concurrent use afterwards.
type Resolver struct {
	loader   *player.Loader
	resolver *formats.Resolver
}

// New creates a Resolver that fetches player scripts with client.New().
func New() *Resolver {
	return NewWithFetcher(client.New())
}

// NewWithFetcher creates a Resolver that fetches player scripts with f.
func NewWithFetcher(f player.Fetcher) *Resolver {
	l := player.NewLoader(f)
	return &Resolver{loader: l, resolver: formats.NewResolver(l)}
}

// WithHTTPClient fetches player scripts with c instead of the default client.
func (r *Resolver) WithHTTPClient(c *http.Client) *Resolver {
	r.loader.WithFetcher(player.HTTPFetcher{Client: c})
	return r
}

// WithLoadPolicy sets how concurrent cache misses are handled.
func (r *Resolver) WithLoadPolicy(p player.LoadPolicy) *Resolver {
	r.loader.WithPolicy(p)
	return r
}

// WithScriptHost sets the host for host-relative script addresses.
func (r *Resolver) WithScriptHost(host string) *Resolver {
	r.loader.WithScriptHost(host)
	return r
}

// WithStore keeps recovered ciphers in s across processes.
func (r *Resolver) WithStore(s player.Store) *Resolver {
	r.loader.WithStore(s)
	return r
}

// WithVerifier cross-checks every newly recovered cipher with v.
func (r *Resolver) WithVerifier(v cipher.Verifier) *Resolver {
	r.loader.WithVerifier(v)
	return r
}

// WithTelemetry records loader metrics and spans.
func (r *Resolver) WithTelemetry(meter metric.Meter, tracer trace.Tracer) *Resolver {
	r.loader.WithMeter(meter).WithTracer(tracer)
	return r
}

// Loader returns the underlying cipher loader.
func (r *Resolver) Loader() *player.Loader {
	return r.loader
}

// Cipher returns the cipher of the player script at script.
func (r *Resolver) Cipher(ctx context.Context, script string) (*cipher.Cipher, error) {
	return r.loader.Cipher(ctx, script)
}

// Decode decodes a scrambled signature with the cipher of script.
func (r *Resolver) Decode(ctx context.Context, token, script string) (string, error) {
	return r.resolver.Decode(ctx, token, script)
}

// ResolvePlaybackURL returns the fetchable URL of f. See
// formats.Resolver.ResolvePlaybackURL.
func (r *Resolver) ResolvePlaybackURL(ctx context.Context, f Format, script string) (*url.URL, error) {
	return r.resolver.ResolvePlaybackURL(ctx, f, script)
}

// ResolveManifestURL decodes the signature segment of a manifest URL. See
// formats.Resolver.ResolveManifestURL.
func (r *Resolver) ResolveManifestURL(ctx context.Context, manifest, script string) (string, error) {
	return r.resolver.ResolveManifestURL(ctx, manifest, script)
}

// ResolveSignatureCipher parses a signatureCipher value and resolves the
// playback URL it describes.
func (r *Resolver) ResolveSignatureCipher(ctx context.Context, signatureCipher, script string) (*url.URL, error) {
	f, err := formats.ParseSignatureCipher(signatureCipher)
	if err != nil {
		return nil, err
	}
	return r.resolver.ResolvePlaybackURL(ctx, f, script)
}
