package minio

import (
	"context"
	"sync"
)

// Publisher uploads finished output tables into the configured bucket
type Publisher struct {
	client *Client

	once    sync.Once
	initErr error
}

// NewPublisher creates a publisher on top of an existing client
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish uploads the file at path under <prefix>/<basename> and returns the object key
func (p *Publisher) Publish(ctx context.Context, path string) (string, error) {
	cfg := p.client.Config()

	p.once.Do(func() {
		p.initErr = p.client.EnsureBucket(ctx, cfg.Bucket)
	})
	if p.initErr != nil {
		return "", p.initErr
	}

	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	key := GenerateObjectKey(path, cfg.Prefix)
	info, err := p.client.FPutObject(ctx, cfg.Bucket, key, path, "")
	if err != nil {
		return "", err
	}

	return info.Key, nil
}

// Close closes the underlying client
func (p *Publisher) Close() error {
	return p.client.Close()
}
