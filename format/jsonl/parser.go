package jsonl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/seqstore/internal/lines"
	"github.com/hupe1980/seqstore/visit"
)

type parser struct {
	src   visit.Source
	owner string
	cfg   config
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
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		id, err := p.recordID(line)
		if err != nil {
			return &visit.SyntaxError{Source: p.src.Name(), Offset: off, Msg: err.Error()}
		}

		cb.Reset(off)
		rv := v.VisitRecordStart(id, cb)
		if rv != nil {
			body, ok := rv.(RecordVisitor)
			if !ok {
				return fmt.Errorf("jsonl: record visitor %T does not implement jsonl.RecordVisitor", rv)
			}
			if err := body.VisitPayload(line); err != nil {
				return &visit.SyntaxError{Source: p.src.Name(), Offset: off, Msg: err.Error()}
			}
			body.VisitEnd()
		}
		if cb.Halted() {
			visit.Finish(v, true)
			return nil
		}
	}
}

func (p *parser) recordID(line []byte) (string, error) {
	if line[0] != '{' {
		return "", errors.New("expected a JSON object")
	}
	var doc map[string]any
	if err := p.cfg.codec.Unmarshal(line, &doc); err != nil {
		return "", err
	}
	raw, ok := doc[p.cfg.idField]
	if !ok {
		return "", fmt.Errorf("missing id field %q", p.cfg.idField)
	}
	switch id := raw.(type) {
	case string:
		if id == "" {
			return "", fmt.Errorf("empty id field %q", p.cfg.idField)
		}
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("id field %q has type %T", p.cfg.idField, raw)
	}
}
