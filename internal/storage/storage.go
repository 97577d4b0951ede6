// Package storage is the key-value capability the cart blob is written to.
package storage

import "context"

// Storage is a string key-value store. Get reports ok=false for an absent key;
// err is reserved for the backend being unreachable or failing.
type Storage interface {
	Get(c context.Context, key string) (value string, ok bool, err error)
	Set(c context.Context, key string, value string) error
}
