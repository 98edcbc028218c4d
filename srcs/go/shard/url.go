package shard

import (
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
)

const s3Prefix = `s3://`

// IsS3 reports whether the pattern names shards in object storage.
// Anything else is taken as a local path the loader reads directly.
func IsS3(s string) bool {
	return strings.HasPrefix(s, s3Prefix)
}

// URL locates shards in object storage. The key may carry an
// unexpanded brace pattern.
type URL struct {
	Bucket string
	Key    string
}

func ParseURL(s string) (*URL, error) {
	rest, ok := strings.CutPrefix(s, s3Prefix)
	if !ok {
		return nil, errors.Errorf("not an s3 url: %q", s)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || len(bucket) == 0 || len(key) == 0 {
		return nil, errors.Errorf("invalid s3 url: %q", s)
	}
	return &URL{Bucket: bucket, Key: key}, nil
}

func (u URL) String() string {
	return s3Prefix + u.Bucket + "/" + u.Key
}

// Dir is the URL of the directory holding the shards.
func (u URL) Dir() URL {
	return URL{Bucket: u.Bucket, Key: path.Dir(u.Key)}
}

func (u URL) WithKey(key string) URL {
	return URL{Bucket: u.Bucket, Key: key}
}

// Expand resolves the brace pattern in the key to one URL per shard.
func (u URL) Expand() ([]URL, error) {
	keys, err := ExpandBraces(u.Key)
	if err != nil {
		return nil, err
	}
	urls := make([]URL, 0, len(keys))
	for _, key := range keys {
		urls = append(urls, u.WithKey(key))
	}
	return urls, nil
}

// PipeCommand renders the pipe loader for the shards. The reader on
// the other side expands the braces itself, one subprocess per shard.
func PipeCommand(u URL) string {
	return fmt.Sprintf("pipe:aws s3 cp %s -", u)
}
