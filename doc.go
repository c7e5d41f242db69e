// Package ytcipher decodes the scrambled signatures YouTube attaches to
// media URLs.
//
// Features:
//   - Recovers the signature cipher from a player script without running it
//   - Caches one cipher per player script with at most one fetch per script
//   - Rewrites playback URLs and DASH manifest URLs with decoded signatures
//   - Optional on-disk cipher store and JavaScript cross-check
//
// Example:
//
//	r := ytcipher.New()
//	u, err := r.ResolvePlaybackURL(ctx, ytcipher.Format{
//		URL:       "https://rr1---sn-abc.googlevideo.com/videoplayback?itag=251",
//		Signature: scrambled,
//	}, "/s/player/0f1e2d3c/player_ias.vflset/en_US/base.js")
package ytcipher
