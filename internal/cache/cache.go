package cache

import (
	"time"
)

// Cache defines the byte-level key/value interface shared by every local backend
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Collection names a logical entity collection persisted on the device
type Collection string

const (
	CollectionClaims     Collection = "claims"
	CollectionClaimants  Collection = "claimants"
	CollectionManifestos Collection = "manifestos"
)

// collectionKeys lists the storage keys per collection: primary first, then legacy aliases
// probed for reads only, newest to oldest.
var collectionKeys = map[Collection][]string{
	CollectionClaims:     {"pap_claims_v1", "pap_claims", "claims"},
	CollectionClaimants:  {"pap_claimants_v1", "pap_claimants", "claimants"},
	CollectionManifestos: {"pap_manifestos_v1"},
}

// Keys returns the ordered candidate keys for a collection
func Keys(c Collection) []string {
	keys, ok := collectionKeys[c]
	if !ok {
		return []string{"pap_" + string(c) + "_v1"}
	}
	return keys
}

// PrimaryKey returns the key that writes go to
func PrimaryKey(c Collection) string {
	return Keys(c)[0]
}
