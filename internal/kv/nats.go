package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the JetStream bucket used when none is configured.
const DefaultBucket = "snapreview"

// NATS stores values in a JetStream key/value bucket.
type NATS struct {
	kv jetstream.KeyValue
	nc *nats.Conn
}

// NewNATS wraps an existing bucket handle.
func NewNATS(kv jetstream.KeyValue) *NATS {
	return &NATS{kv: kv}
}

// DialNATS connects to url and opens (creating if needed) the named bucket.
func DialNATS(ctx context.Context, url, bucket string) (*NATS, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "snapreview credentials and sessions",
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream bucket %s: %w", bucket, err)
	}
	clog.FromContext(ctx).With("url", url).With("bucket", bucket).Debug("nats kv store connected")
	return &NATS{kv: kv, nc: nc}, nil
}

// Close drains the underlying connection when the store owns it.
func (n *NATS) Close() error {
	if n.nc == nil {
		return nil
	}
	return n.nc.Drain()
}

func (n *NATS) Get(ctx context.Context, key string) (string, bool, error) {
	e, err := n.kv.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("nats get %s: %w", key, err)
	}
	return string(e.Value()), true, nil
}

func (n *NATS) Set(ctx context.Context, key, value string) error {
	if _, err := n.kv.Put(ctx, natsKey(key), []byte(value)); err != nil {
		return fmt.Errorf("nats put %s: %w", key, err)
	}
	return nil
}

func (n *NATS) Remove(ctx context.Context, key string) error {
	err := n.kv.Delete(ctx, natsKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("nats delete %s: %w", key, err)
	}
	return nil
}

// natsKey maps arbitrary keys onto the JetStream key alphabet.
func natsKey(key string) string {
	b := []byte(key)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '=', c == '.', c == '/':
		default:
			b[i] = '_'
		}
	}
	return string(b)
}
