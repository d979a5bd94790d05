package fs

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	FailOnOpen     bool
	FailAfterBytes int64 // Fail reads after this many bytes read from this file. -1 to disable.
	FailOnClose    bool
	Err            error
}

// FaultyFS is a FileSystem wrapper that can inject errors.
type FaultyFS struct {
	FS      FileSystem
	Default Fault

	mu    sync.Mutex
	rules map[string]Fault // name pattern -> fault

	open   atomic.Int64
	opened atomic.Int64
}

// NewFaultyFS creates a new FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{
		FS:      fs,
		Default: Fault{FailAfterBytes: -1},
		rules:   make(map[string]Fault),
	}
}

// AddRule adds a fault for files whose name contains pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// OpenFiles returns the number of files opened and not yet closed.
func (f *FaultyFS) OpenFiles() int64 { return f.open.Load() }

// Opened returns the total number of successful opens.
func (f *FaultyFS) Opened() int64 { return f.opened.Load() }

func (f *FaultyFS) faultFor(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	fault := f.Default
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
		}
	}
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	return fault
}

func (f *FaultyFS) Open(name string) (File, error) {
	fault := f.faultFor(name)
	if fault.FailOnOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: fault.Err}
	}
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	f.open.Add(1)
	f.opened.Add(1)
	return &faultyFile{File: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.FS.Stat(name)
}

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	return f.FS.ReadDir(name)
}

type faultyFile struct {
	File
	fs     *FaultyFS
	fault  Fault
	read   atomic.Int64
	closed atomic.Bool
}

func (ff *faultyFile) charge(n int) error {
	if ff.fault.FailAfterBytes < 0 {
		return nil
	}
	if ff.read.Add(int64(n)) > ff.fault.FailAfterBytes {
		return ff.fault.Err
	}
	return nil
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if err := ff.charge(len(p)); err != nil {
		return 0, err
	}
	return ff.File.Read(p)
}

func (ff *faultyFile) ReadAt(p []byte, off int64) (int, error) {
	if err := ff.charge(len(p)); err != nil {
		return 0, err
	}
	return ff.File.ReadAt(p, off)
}

func (ff *faultyFile) Close() error {
	if !ff.closed.CompareAndSwap(false, true) {
		return os.ErrClosed
	}
	ff.fs.open.Add(-1)
	err := ff.File.Close()
	if ff.fault.FailOnClose {
		return ff.fault.Err
	}
	return err
}

var _ io.ReaderAt = (*faultyFile)(nil)
