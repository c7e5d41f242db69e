// Package player fetches player scripts and caches the ciphers recovered
// from them.
//
// A Loader keys everything on the script identity, the address the script
// is fetched from. Player deployments change their address whenever the
// script changes, so a cipher stored for an identity is never refreshed.
//
//	l := player.NewLoader(client.New()).
//		WithPolicy(&player.GlobalLock{}).
//		WithVerifier(cipher.OttoVerifier{})
//	c, err := l.Cipher(ctx, "/s/player/0f1e2d3c/player_ias.vflset/en_US/base.js")
//
// Cache misses run inside a LoadPolicy. PerKey (the default) collapses
// concurrent misses on one identity into a single fetch and lets different
// identities load in parallel. GlobalLock allows one load at a time across
// all identities. Both re-check the cache once inside the section.
//
// A fetch that fails or answers with anything but 200 OK yields a network
// error; a script without the expected helper object or decipher function
// yields a format error. Neither is cached.
//
// A Store adds a persistent tier consulted inside the section before any
// fetch. FileStore writes one JSON file per identity; SQLiteStore keeps
// all identities in one database.
package player
