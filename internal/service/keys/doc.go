// Package keys implements the license-key inventory and redemption manager.
//
// It owns the lifecycle of product keys: bulk stocking, claiming an available
// key for a purchase intent, redeeming a manually entered key, returning a
// used key to the available pool, and hard deletion. Correctness under
// concurrent redemption is delegated to the repository, which must provide an
// atomic claim (one conditional update, never read-then-write) and a global
// uniqueness constraint on the key value.
package keys
