// Package jsonl implements JSON Lines records: one JSON object per line,
// keyed by a string or numeric id field ("id" by default).
//
//	{"id":"ann1","contig":"contig1","start":120,"end":980,"gene":"rpoB"}
//	{"id":"ann2","contig":"contig1","start":1500,"end":2210}
//
// Payloads are decoded into T with a codec.Codec (codec.Default unless
// configured).
package jsonl

import (
	"fmt"

	"github.com/hupe1980/seqstore/codec"
	"github.com/hupe1980/seqstore/visit"
)

// Name is the format name used in memento owner tags.
const Name = "jsonl"

// DefaultIDField is the id field used when none is configured.
const DefaultIDField = "id"

// RecordVisitor receives the body of one JSON Lines record.
type RecordVisitor interface {
	visit.RecordVisitor
	// VisitPayload receives the raw JSON object. A returned error aborts the
	// pass.
	VisitPayload(raw []byte) error
}

// Option configures a Format.
type Option func(*config)

type config struct {
	codec   codec.Codec
	idField string
}

// WithCodec sets the codec used to decode ids and payloads.
func WithCodec(c codec.Codec) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.codec = c
		}
	}
}

// WithIDField sets the JSON field holding the record id.
func WithIDField(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.idField = name
		}
	}
}

// Format is the JSON Lines visit.Format for records of type T.
type Format[T any] struct {
	cfg config
}

// New returns a Format decoding payloads into T.
func New[T any](opts ...Option) Format[T] {
	cfg := config{codec: codec.Default, idField: DefaultIDField}
	for _, opt := range opts {
		opt(&cfg)
	}
	return Format[T]{cfg: cfg}
}

func (f Format[T]) config() config {
	if f.cfg.codec == nil {
		return config{codec: codec.Default, idField: DefaultIDField}
	}
	return f.cfg
}

// Name implements visit.Format.
func (f Format[T]) Name() string { return Name }

// NewParser implements visit.Format.
func (f Format[T]) NewParser(src visit.Source) visit.Parser {
	return &parser{src: src, owner: visit.Owner(Name, src.Name()), cfg: f.config()}
}

// NewMaterializer implements visit.Format.
func (f Format[T]) NewMaterializer(id string, emit func(T)) visit.RecordVisitor {
	return &materializer[T]{id: id, codec: f.config().codec, emit: emit}
}

type materializer[T any] struct {
	id    string
	codec codec.Codec
	rec   T
	ok    bool
	emit  func(T)
}

func (m *materializer[T]) VisitPayload(raw []byte) error {
	if err := m.codec.Unmarshal(raw, &m.rec); err != nil {
		return fmt.Errorf("jsonl: decode %q: %w", m.id, err)
	}
	m.ok = true
	return nil
}

func (m *materializer[T]) VisitEnd() {
	if m.ok {
		m.emit(m.rec)
	}
}
