package fasta

import (
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/seqstore/visit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contigs = `>contig1 length=12 cov=31.2
ACGTACGT
ACGT

>contig2
GGGG
>contig3	circular
TTAA
`

func seekable(data string) visit.Source {
	return visit.Seekable("contigs.fa", strings.NewReader(data), int64(len(data)))
}

// collector materializes every record and optionally halts after n records
// or creates mementos.
type collector struct {
	records   []Record
	mementos  []visit.Memento
	haltAfter int
	ended     bool
	halted    bool
}

func (c *collector) VisitRecordStart(id string, cb visit.Callback) visit.RecordVisitor {
	if cb.CanCreateMemento() {
		m, err := cb.CreateMemento()
		if err == nil {
			c.mementos = append(c.mementos, m)
		}
	}
	if c.haltAfter > 0 && len(c.records)+1 >= c.haltAfter {
		cb.HaltParsing()
	}
	return Format{}.NewMaterializer(id, func(r Record) { c.records = append(c.records, r) })
}

func (c *collector) VisitEnd() { c.ended = true }
func (c *collector) Halted()   { c.halted = true }

func TestParse(t *testing.T) {
	c := &collector{}
	require.NoError(t, Format{}.NewParser(seekable(contigs)).Parse(context.Background(), c))

	assert.True(t, c.ended)
	assert.False(t, c.halted)
	assert.Equal(t, []Record{
		{ID: "contig1", Description: "length=12 cov=31.2", Sequence: "ACGTACGTACGT"},
		{ID: "contig2", Sequence: "GGGG"},
		{ID: "contig3", Description: "circular", Sequence: "TTAA"},
	}, c.records)
	assert.Equal(t, 12, c.records[0].Len())

	require.Len(t, c.mementos, 3)
	assert.Equal(t, int64(0), c.mementos[0].Offset())
	assert.Equal(t, int64(strings.Index(contigs, ">contig2")), c.mementos[1].Offset())
}

func TestParse_Halt(t *testing.T) {
	c := &collector{haltAfter: 2}
	require.NoError(t, Format{}.NewParser(seekable(contigs)).Parse(context.Background(), c))

	assert.True(t, c.halted)
	assert.False(t, c.ended)
	require.Len(t, c.records, 2)
	assert.Equal(t, "contig2", c.records[1].ID)
}

func TestParseFrom_MementoRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := seekable(contigs)

	first := &collector{}
	require.NoError(t, Format{}.NewParser(src).Parse(ctx, first))

	for i, m := range first.mementos {
		c := &collector{haltAfter: 1}
		require.NoError(t, Format{}.NewParser(src).ParseFrom(ctx, c, m))
		require.Len(t, c.records, 1)
		assert.Equal(t, first.records[i], c.records[0])
	}
}

func TestParseFrom_ForeignMemento(t *testing.T) {
	ctx := context.Background()

	m := visit.NewMemento(visit.Owner("fastq", "contigs.fa"), 0)
	err := Format{}.NewParser(seekable(contigs)).ParseFrom(ctx, &collector{}, m)
	assert.ErrorIs(t, err, visit.ErrMementoMisuse)

	other := visit.Seekable("other.fa", strings.NewReader(contigs), int64(len(contigs)))
	m = visit.NewMemento(visit.Owner(Name, "contigs.fa"), 0)
	err = Format{}.NewParser(other).ParseFrom(ctx, &collector{}, m)
	assert.ErrorIs(t, err, visit.ErrMementoMisuse)
}

func TestParse_Sequential(t *testing.T) {
	src := visit.Sequential("contigs.fa.gz", strings.NewReader(contigs))
	c := &collector{}
	require.NoError(t, Format{}.NewParser(src).Parse(context.Background(), c))

	assert.Len(t, c.records, 3)
	assert.Empty(t, c.mementos)

	m := visit.NewMemento(visit.Owner(Name, "contigs.fa.gz"), 0)
	err := Format{}.NewParser(src).ParseFrom(context.Background(), &collector{}, m)
	assert.ErrorIs(t, err, visit.ErrMementoUnsupported)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := map[string]string{
		"missing header": "ACGT\n>a\nAC\n",
		"empty id":       ">\nACGT\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			err := Format{}.NewParser(seekable(data)).Parse(context.Background(), &collector{})
			var se *visit.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "contigs.fa", se.Source)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	c := &collector{}
	require.NoError(t, Format{}.NewParser(seekable("\n\n")).Parse(context.Background(), c))
	assert.True(t, c.ended)
	assert.Empty(t, c.records)
}

func TestParser_SinglePass(t *testing.T) {
	p := Format{}.NewParser(seekable(contigs))
	require.NoError(t, p.Parse(context.Background(), &collector{}))
	assert.ErrorIs(t, p.Parse(context.Background(), &collector{}), visit.ErrParserReused)
}

func TestParse_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Format{}.NewParser(seekable(contigs)).Parse(ctx, &collector{})
	assert.ErrorIs(t, err, context.Canceled)
}

type plainVisitor struct{}

func (plainVisitor) VisitEnd() {}

type wrongBody struct{}

func (wrongBody) VisitRecordStart(string, visit.Callback) visit.RecordVisitor { return plainVisitor{} }
func (wrongBody) VisitEnd()                                                   {}
func (wrongBody) Halted()                                                     {}

func TestParse_WrongRecordVisitor(t *testing.T) {
	err := Format{}.NewParser(seekable(contigs)).Parse(context.Background(), wrongBody{})
	assert.ErrorContains(t, err, "does not implement fasta.RecordVisitor")
}
