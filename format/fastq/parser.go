package fastq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
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

		header, off, err := lr.Next()
		if errors.Is(err, io.EOF) {
			visit.Finish(v, false)
			return nil
		}
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(header)) == 0 {
			continue
		}
		if header[0] != '@' {
			return p.syntaxError(off, "expected '@' at record start")
		}
		id, desc := splitHeader(header[1:])
		if id == "" {
			return p.syntaxError(off, "empty record id")
		}

		// read the whole record before visiting so a truncated record is
		// reported before any body call
		bases, err := p.expectLine(lr, off, "bases")
		if err != nil {
			return err
		}
		sepOff := lr.Offset()
		sep, err := p.expectLine(lr, off, "'+' separator")
		if err != nil {
			return err
		}
		if len(sep) == 0 || sep[0] != '+' {
			return p.syntaxError(sepOff, "expected '+' separator")
		}
		if rest := bytes.TrimSpace(sep[1:]); len(rest) > 0 && string(rest) != id && !bytes.HasPrefix(rest, []byte(id+" ")) {
			return p.syntaxError(sepOff, fmt.Sprintf("separator names %q, record is %q", rest, id))
		}
		qualOff := lr.Offset()
		quals, err := p.expectLine(lr, off, "qualities")
		if err != nil {
			return err
		}
		bases, quals = bytes.TrimSpace(bases), bytes.TrimSpace(quals)
		if len(bases) != len(quals) {
			return p.syntaxError(qualOff, fmt.Sprintf("%d bases but %d qualities", len(bases), len(quals)))
		}

		cb.Reset(off)
		body, err := bodyVisitor(v.VisitRecordStart(id, cb))
		if err != nil {
			return err
		}
		if body != nil {
			if desc != "" {
				body.VisitDescription(desc)
			}
			body.VisitBases(bases)
			body.VisitQualities(quals)
			body.VisitEnd()
		}
		if cb.Halted() {
			visit.Finish(v, true)
			return nil
		}
	}
}

func (p *parser) expectLine(lr *lines.Reader, recordOff int64, what string) ([]byte, error) {
	line, _, err := lr.Next()
	if errors.Is(err, io.EOF) {
		return nil, p.syntaxError(recordOff, "truncated record: missing "+what)
	}
	return line, err
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
