package seqstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hupe1980/seqstore/blobstore"
	"github.com/hupe1980/seqstore/datastore"
	"github.com/hupe1980/seqstore/internal/compress"
	"github.com/hupe1980/seqstore/resource"
	"github.com/hupe1980/seqstore/visit"
)

// DataStore is a keyed, closeable collection of records.
type DataStore[T any] = datastore.DataStore[T]

// ProviderHint selects which store variant Open builds.
type ProviderHint int

const (
	// RandomAccessEager keeps every record in memory.
	RandomAccessEager ProviderHint = iota
	// RandomAccessLazy keeps an id index and re-reads records on demand.
	RandomAccessLazy
	// IterationOnly keeps nothing and streams the file.
	IterationOnly
)

func (h ProviderHint) String() string {
	switch h {
	case RandomAccessEager:
		return "eager"
	case RandomAccessLazy:
		return "lazy"
	case IterationOnly:
		return "iteration"
	default:
		return fmt.Sprintf("ProviderHint(%d)", int(h))
	}
}

// ParseProviderHint parses the names printed by ProviderHint.String.
func ParseProviderHint(s string) (ProviderHint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eager", "random-access-eager":
		return RandomAccessEager, nil
	case "", "lazy", "random-access-lazy":
		return RandomAccessLazy, nil
	case "iteration", "iteration-only", "streaming":
		return IterationOnly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProviderHint, s)
	}
}

// Open builds a store over the named blob.
func Open[T any](ctx context.Context, store blobstore.BlobStore, name string, format visit.Format[T], optFns ...Option) (DataStore[T], error) {
	o := applyOptions(optFns)
	s, err := open(ctx, store, name, format, o)
	if err != nil {
		return nil, err
	}
	return decorate(s, o)
}

// OpenComposite builds one store per name and combines them in order.
// Caching and metrics apply to the composite as a whole.
func OpenComposite[T any](ctx context.Context, store blobstore.BlobStore, names []string, format visit.Format[T], optFns ...Option) (DataStore[T], error) {
	if len(names) == 0 {
		return nil, ErrNoDelegates
	}
	o := applyOptions(optFns)

	delegates := make([]DataStore[T], 0, len(names))
	for _, name := range names {
		s, err := open(ctx, store, name, format, o)
		if err != nil {
			if cerr := closeAll(delegates); cerr != nil {
				o.logger.LogClose(ctx, cerr)
			}
			return nil, err
		}
		delegates = append(delegates, s)
	}
	c, err := datastore.NewComposite(delegates, datastore.WithLogger(o.logger.Logger))
	if err != nil {
		_ = closeAll(delegates)
		return nil, err
	}
	return decorate[T](c, o)
}

// OpenPrefix opens every blob whose name starts with prefix, in name order.
func OpenPrefix[T any](ctx context.Context, store blobstore.BlobStore, prefix string, format visit.Format[T], optFns ...Option) (DataStore[T], error) {
	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no blobs below %q", ErrNoDelegates, prefix)
	}
	return OpenComposite(ctx, store, names, format, optFns...)
}

func decorate[T any](s DataStore[T], o options) (DataStore[T], error) {
	if o.cacheSize > 0 {
		c, err := datastore.NewCaching(s, o.cacheSize)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s = c
	}
	if o.metricsCollector != nil {
		s = newInstrumented(s, o.metricsCollector, o.logger)
	}
	return s, nil
}

// open builds the bare store for one blob.
func open[T any](ctx context.Context, store blobstore.BlobStore, name string, format visit.Format[T], o options) (_ DataStore[T], err error) {
	start := time.Now()
	logger := o.logger.WithSource(name)
	hint := o.hint
	defer func() {
		elapsed := time.Since(start)
		logger.LogOpen(ctx, format.Name(), hint, elapsed, err)
		if o.metricsCollector != nil {
			o.metricsCollector.RecordBuild(hint, elapsed, err)
		}
	}()

	if hint < RandomAccessEager || hint > IterationOnly {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, hint)
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	src := &blobSource{name: name, blob: blob, kind: compress.Detect(name), rc: o.rc}
	if src.kind != compress.None && hint == RandomAccessLazy {
		hint = RandomAccessEager
		logger.LogFallback(ctx, o.hint, hint, src.kind.String()+" compressed source is not seekable")
	}
	storeOpts := o.storeOptions(logger)

	switch hint {
	case RandomAccessEager:
		defer func() {
			if cerr := blob.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		e, berr := datastore.NewEager(ctx, format, src.sequential, storeOpts...)
		if berr != nil {
			return nil, berr
		}
		return e, nil
	case RandomAccessLazy:
		s, berr := datastore.NewIndexed(ctx, format, src.seekable, blob, storeOpts...)
		if berr != nil {
			return nil, berr
		}
		return s, nil
	default:
		s, berr := datastore.NewStreaming(format, src.sequential, blob, storeOpts...)
		if berr != nil {
			_ = blob.Close()
			return nil, berr
		}
		return s, nil
	}
}

// blobSource turns a blob into visit sources. Sequential views stream the
// whole blob through the decompressor; seekable views read at offsets.
type blobSource struct {
	name string
	blob blobstore.Blob
	kind compress.Kind
	rc   *resource.Controller
}

func (s *blobSource) sequential(ctx context.Context) (visit.Source, io.Closer, error) {
	rc, err := s.blob.ReadRange(ctx, 0, s.blob.Size())
	if err != nil {
		return visit.Source{}, nil, err
	}
	r := resource.NewRateLimitedReader(ctx, rc, s.rc)
	dec, err := compress.NewReader(s.kind, r)
	if err != nil {
		_ = rc.Close()
		return visit.Source{}, nil, err
	}
	return visit.Sequential(s.name, dec), closers{rc, dec}, nil
}

func (s *blobSource) seekable(ctx context.Context) (visit.Source, io.Closer, error) {
	if s.kind != compress.None {
		return visit.Source{}, nil, fmt.Errorf("%w: %s source %q is not seekable", ErrInvalidArgument, s.kind, s.name)
	}
	var ra io.ReaderAt
	if m, ok := s.blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return visit.Source{}, nil, err
		}
		ra = bytes.NewReader(data)
	} else {
		ra = resource.NewRateLimitedReaderAt(ctx, blobstore.ReaderAt(ctx, s.blob), s.rc)
	}
	return visit.Seekable(s.name, ra, s.blob.Size()), io.NopCloser(nil), nil
}
