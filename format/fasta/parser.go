package fasta

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/hupe1980/seqstore/internal/lines"
	"github.com/hupe1980/seqstore/visit"
)

type parser struct {
	src   visit.Source
	owner string
	used  bool
}

func (p *parser) Parse(ctx context.Context, v visit.Visitor) error {
	return p.run(ctx, v, 0)
}

func (p *parser) ParseFrom(ctx context.Context, v visit.Visitor, m visit.Memento) error {
	off, err := visit.Resolve(m, p.owner)
	if err != nil {
		return err
	}
	if !p.src.IsSeekable() {
		return visit.ErrMementoUnsupported
	}
	return p.run(ctx, v, off)
}

func (p *parser) run(ctx context.Context, v visit.Visitor, start int64) error {
	if p.used {
		return visit.ErrParserReused
	}
	p.used = true

	r, err := p.src.ReaderFrom(start)
	if err != nil {
		return err
	}
	lr := lines.NewReader(r, start)
	cb := visit.NewCallback(p.owner, p.src.IsSeekable())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, off, err := lr.Next()
		if errors.Is(err, io.EOF) {
			visit.Finish(v, false)
			return nil
		}
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if line[0] != '>' {
			return p.syntaxError(off, "expected '>' at record start")
		}

		id, desc := splitHeader(line[1:])
		if id == "" {
			return p.syntaxError(off, "empty record id")
		}

		cb.Reset(off)
		body, err := bodyVisitor(v.VisitRecordStart(id, cb))
		if err != nil {
			return err
		}
		if body != nil && desc != "" {
			body.VisitDescription(desc)
		}
		if err := readSequence(lr, body); err != nil {
			return err
		}
		if body != nil {
			body.VisitEnd()
		}
		if cb.Halted() {
			visit.Finish(v, true)
			return nil
		}
	}
}

// readSequence consumes sequence lines up to the next header or EOF.
func readSequence(lr *lines.Reader, body RecordVisitor) error {
	for {
		line, _, err := lr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(line) > 0 && line[0] == '>' {
			lr.Unread()
			return nil
		}
		if body == nil {
			continue
		}
		if seq := bytes.TrimSpace(line); len(seq) > 0 {
			body.VisitSequence(seq)
		}
	}
}

func splitHeader(h []byte) (string, string) {
	h = bytes.TrimSpace(h)
	if i := bytes.IndexAny(h, " \t"); i >= 0 {
		return string(h[:i]), string(bytes.TrimSpace(h[i+1:]))
	}
	return string(h), ""
}

func (p *parser) syntaxError(off int64, msg string) error {
	return &visit.SyntaxError{Source: p.src.Name(), Offset: off, Msg: msg}
}
