package dao

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dbrowse/dbrowse/internal/mds"
)

func init() {
	RegisterBroker(mds.BackendS3, &S3Broker{})
}

const (
	runStartsDir   = "run_starts"
	descriptorsDir = "event_descriptors"
	documentSuffix = ".json"
)

// S3Broker reads run headers from JSON documents in an S3 bucket. Run start
// keys must sort by time, descriptors live under the uid of their run.
//
//	{prefix}/run_starts/{sortable time}-{uid}.json
//	{prefix}/event_descriptors/{run start uid}/{uid}.json
type S3Broker struct {
	StoreResource
}

// Init sets up the document cache on top of the base initialization.
func (b *S3Broker) Init(f Factory, backend mds.Backend) {
	b.StoreResource.Init(f, backend)
	if b.getCache() == nil {
		b.SetCache(NewDocumentCache(DefaultCacheTTL))
	}
}

// FetchLast returns up to n most recent headers, newest first.
func (b *S3Broker) FetchLast(ctx context.Context, n int) ([]*Header, error) {
	if err := validCount(n); err != nil {
		return nil, err
	}
	c, err := b.client()
	if err != nil {
		return nil, err
	}
	cfg := c.Config()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := c.S3(ctx)
	if err != nil {
		return nil, b.classify(err, "connect")
	}

	keys, err := listDocuments(ctx, client, cfg.Database, runStartsPrefix(cfg.Prefix))
	if err != nil {
		return nil, b.classify(err, "list run starts")
	}
	b.markConnected()

	sort.Strings(keys)
	if len(keys) > n {
		keys = keys[len(keys)-n:]
	}

	headers := make([]*Header, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		raw, err := b.getDocument(ctx, client, cfg.Database, keys[i])
		if err != nil {
			return nil, err
		}
		h, err := DecodeHeader(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keys[i], err)
		}
		headers = append(headers, h)
	}

	var descs []*EventDescriptor
	for _, h := range headers {
		dkeys, err := listDocuments(ctx, client, cfg.Database, descriptorsPrefix(cfg.Prefix, h.UID))
		if err != nil {
			return nil, b.classify(err, "list event descriptors")
		}
		for _, key := range dkeys {
			raw, err := b.getDocument(ctx, client, cfg.Database, key)
			if err != nil {
				return nil, err
			}
			d, err := DecodeDescriptor(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			descs = append(descs, d)
		}
	}
	attachDescriptors(headers, descs)

	log := b.logger()
	log.Debug().Int("requested", n).Int("found", len(headers)).Int("descriptors", len(descs)).Msg("fetched run headers")

	return headers, nil
}

// getDocument returns the object body, served from the cache when possible.
// Store documents are never rewritten, so cached bodies stay valid.
func (b *S3Broker) getDocument(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	cache := b.getCache()
	if cache != nil {
		if doc, ok := cache.Get(key); ok {
			return doc, nil
		}
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, b.classify(err, "get "+key)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, b.classify(err, "read "+key)
	}
	if cache != nil {
		cache.Set(key, raw)
	}
	return raw, nil
}

func listDocuments(ctx context.Context, client *s3.Client, bucket, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, documentSuffix) {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

func runStartsPrefix(prefix string) string {
	return path.Join(prefix, runStartsDir) + "/"
}

func descriptorsPrefix(prefix string, uid UID) string {
	return path.Join(prefix, descriptorsDir, string(uid)) + "/"
}
