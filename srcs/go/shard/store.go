package shard

import (
	"context"
	"encoding/json"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const sizesFile = `sizes.json`

// s3API is the slice of the S3 client the store uses.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store inspects shards in object storage before a run starts, so a
// bad pattern fails at submission instead of inside the trainer.
type Store struct {
	api s3API
}

func NewStore(ctx context.Context) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return &Store{api: s3.NewFromConfig(cfg)}, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return strings.Contains(code, "NotFound") || code == "NoSuchKey"
	}
	return false
}

// ObjectInfo is the stat result for one shard.
type ObjectInfo struct {
	Key    string
	Size   int64
	Exists bool
}

func (s *Store) Stat(ctx context.Context, u URL) (*ObjectInfo, error) {
	out, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(u.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return &ObjectInfo{Key: u.Key}, nil
		}
		return nil, errors.Wrapf(err, "head %s", u)
	}
	return &ObjectInfo{Key: u.Key, Size: aws.ToInt64(out.ContentLength), Exists: true}, nil
}

// StatAll heads every shard of the pattern with at most limit requests
// in flight.
func (s *Store) StatAll(ctx context.Context, u URL, limit int) ([]ObjectInfo, error) {
	urls, err := u.Expand()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 16
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	infos := make([]ObjectInfo, len(urls))
	for i, su := range urls {
		i, su := i, su // per-iteration copies; go.mod predates the 1.22 loopvar change
		g.Go(func() error {
			info, err := s.Stat(ctx, su)
			if err != nil {
				return err
			}
			infos[i] = *info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

var ErrNoSizes = errors.New("no " + sizesFile + " next to the shards")

// Sizes fetches the per shard sample counts stored next to the shards.
// Values may be JSON numbers or strings, both appear in the wild.
func (s *Store) Sizes(ctx context.Context, u URL) (map[string]int64, error) {
	key := path.Join(path.Dir(u.Key), sizesFile)
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(ErrNoSizes, "s3://%s/%s", u.Bucket, key)
		}
		return nil, errors.Wrapf(err, "get s3://%s/%s", u.Bucket, key)
	}
	defer out.Body.Close()
	var raw map[string]interface{}
	if err := json.NewDecoder(out.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, sizesFile)
	}
	sizes := make(map[string]int64)
	for name, val := range raw {
		switch v := val.(type) {
		case float64:
			sizes[name] = int64(v)
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s[%q]", sizesFile, name)
			}
			sizes[name] = n
		default:
			return nil, errors.Errorf("%s[%q]: unexpected value %v", sizesFile, name, val)
		}
	}
	return sizes, nil
}

// NumSamples sums the sample counts of the given shards. Shards absent
// from sizes.json count zero.
func NumSamples(sizes map[string]int64, keys []string) int64 {
	var total int64
	for _, k := range keys {
		total += sizes[path.Base(k)]
	}
	return total
}

// List enumerates the objects that actually exist under the pattern's
// directory.
func (s *Store) List(ctx context.Context, u URL) ([]ObjectInfo, error) {
	prefix := path.Dir(u.Key) + "/"
	var infos []ObjectInfo
	var token *string
	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(u.Bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "list s3://%s/%s", u.Bucket, prefix)
		}
		for _, obj := range out.Contents {
			infos = append(infos, ObjectInfo{
				Key:    aws.ToString(obj.Key),
				Size:   aws.ToInt64(obj.Size),
				Exists: true,
			})
		}
		if !aws.ToBool(out.IsTruncated) {
			return infos, nil
		}
		token = out.NextContinuationToken
	}
}
