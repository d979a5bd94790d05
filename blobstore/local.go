package blobstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	ifs "github.com/hupe1980/seqstore/internal/fs"
	"github.com/hupe1980/seqstore/internal/mmap"
)

// LocalStore implements BlobStore using the local file system.
//
// Blobs are memory-mapped by default. With WithFileSystem, files are read
// through the given file system instead, which allows fault injection.
type LocalStore struct {
	root   string
	fs     ifs.FileSystem
	mmap   bool
	advice mmap.AccessPattern
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem reads blobs through fsys with plain file reads instead of
// memory mappings.
func WithFileSystem(fsys ifs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		s.fs = fsys
		s.mmap = false
	}
}

// WithMmap enables or disables memory mapping.
func WithMmap(enabled bool) LocalOption {
	return func(s *LocalStore) {
		s.mmap = enabled
	}
}

// WithAccessPattern sets the kernel access hint for mapped blobs.
func WithAccessPattern(p mmap.AccessPattern) LocalOption {
	return func(s *LocalStore) {
		s.advice = p
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{
		root:   root,
		fs:     ifs.Default,
		mmap:   true,
		advice: mmap.AccessRandom,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a blob for reading.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := s.path(name)
	if s.mmap {
		m, err := mmap.Open(p, s.advice)
		if err != nil {
			return nil, err
		}
		return &mappedBlob{m: m}, nil
	}

	f, err := s.fs.Open(p)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileBlob{f: f, size: info.Size()}, nil
}

// List returns the slash-separated names of all files below the root that
// start with prefix.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk(ctx, "", prefix, &names); err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func (s *LocalStore) walk(ctx context.Context, dir, prefix string, names *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.fs.ReadDir(s.path(dir))
	if err != nil {
		if dir == "" && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := path.Join(dir, e.Name())
		if e.IsDir() {
			// skip subtrees that cannot match
			if !strings.HasPrefix(name+"/", prefix) && !strings.HasPrefix(prefix, name+"/") {
				continue
			}
			if err := s.walk(ctx, name, prefix, names); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(name, prefix) {
			*names = append(*names, name)
		}
	}
	return nil
}

type mappedBlob struct {
	m *mmap.Mapping
}

func (b *mappedBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return b.m.ReadAt(p, off)
}

func (b *mappedBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	off, length = clampRange(off, length, b.Size())
	r, err := b.m.Region(int(off), int(length))
	if err != nil {
		return nil, err
	}
	// range reads are full passes over the records; advisory only
	_ = r.Advise(mmap.AccessSequential)
	return io.NopCloser(r.Reader()), nil
}

func (b *mappedBlob) Bytes() ([]byte, error) {
	if b.m.IsClosed() {
		return nil, mmap.ErrClosed
	}
	return b.m.Bytes(), nil
}

func (b *mappedBlob) Size() int64 { return int64(b.m.Size()) }

func (b *mappedBlob) Close() error { return b.m.Close() }

type fileBlob struct {
	f    ifs.File
	size int64
}

func (b *fileBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.f.ReadAt(p, off)
}

func (b *fileBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	off, length = clampRange(off, length, b.size)
	return io.NopCloser(io.NewSectionReader(b.f, off, length)), nil
}

func (b *fileBlob) Size() int64 { return b.size }

func (b *fileBlob) Close() error { return b.f.Close() }
