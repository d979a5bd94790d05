package s3

import "github.com/aws/aws-sdk-go-v2/feature/s3/manager"

const defaultDownloadThreshold = 64 << 20

type options struct {
	prefix              string
	region              string
	endpoint            string
	usePathStyle        bool
	downloadThreshold   int64
	downloadPartSize    int64
	downloadConcurrency int
}

// Option configures a Store.
type Option func(*options)

// WithPrefix prepends prefix to all keys.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion sets the AWS region used by New.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint overrides the S3 endpoint used by New, e.g. for LocalStack.
func WithEndpoint(endpoint string, usePathStyle bool) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.usePathStyle = usePathStyle
	}
}

// WithDownloadThreshold sets the largest whole-object read served by the
// parallel downloader, which buffers the object in memory. Larger reads
// stream through a single GET. Zero disables the downloader.
func WithDownloadThreshold(n int64) Option {
	return func(o *options) { o.downloadThreshold = n }
}

// WithDownloadConcurrency tunes the parallel downloader.
func WithDownloadConcurrency(partSize int64, concurrency int) Option {
	return func(o *options) {
		o.downloadPartSize = partSize
		o.downloadConcurrency = concurrency
	}
}

func applyOptions(opts []Option) options {
	o := options{
		downloadThreshold:   defaultDownloadThreshold,
		downloadPartSize:    manager.DefaultDownloadPartSize,
		downloadConcurrency: manager.DefaultDownloadConcurrency,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
