package graph

import (
	"github.com/minio/highwayhash"
	"gopkg.in/yaml.v3"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Fingerprint returns a stable 64-bit digest of the graph's canonical
// encoding. Graphs built in the same node and edge order hash identically.
func Fingerprint(g *Graph) (uint64, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return 0, err
	}
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}
