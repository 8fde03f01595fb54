package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps a pre-built rueidis client (typically a mock).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
