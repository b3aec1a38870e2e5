// Package conll renders coreference chains in the CoNLL-2012 bracket
// column and reads them back.
//
// Each token row carries the document id, the part number, the token
// index, the word and the coreference column:
//
//	#begin document (wsj_0001); part 000
//	wsj_0001	0	0	Barack	(2
//	wsj_0001	0	1	Obama	2)
//	wsj_0001	0	2	spoke	-
//
//	#end document
//
// A mention over a single token is written "(id)", a longer one opens with
// "(id" on its first token and closes with "id)" on its last. Several
// markers on one token are joined with "|".
package conll

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/pool"
)

// ErrSyntax is returned by Parse for malformed input.
var ErrSyntax = errors.New("conll: syntax error")

// Span is a mention extent [Start, End) in sentence Sentence.
type Span struct {
	Sentence int
	Start    int
	End      int
}

// Document is one parsed document part.
type Document struct {
	ID    string
	Part  int
	Words [][]string
	// Chains maps a cluster id to its spans in document order.
	Chains map[int][]Span
}

type marker struct {
	id     int
	open   bool
	close  bool
	length int
}

// Write renders doc with the given chains. Chain ids become the bracket
// ids; mentions outside any chain are left unmarked.
func Write(w io.Writer, doc *coref.Document, chains map[int]*coref.Chain) error {
	rows := make([][][]marker, len(doc.Sentences))
	for i, s := range doc.Sentences {
		rows[i] = make([][]marker, len(s.Tokens))
	}

	ids := make([]int, 0, len(chains))
	for id := range chains {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		for _, m := range chains[id].Mentions {
			if m.SentNum < 0 || m.SentNum >= len(rows) || m.Start < 0 || m.End > len(rows[m.SentNum]) || m.Start >= m.End {
				return fmt.Errorf("mention %d span [%d,%d) in sentence %d: %w", m.ID, m.Start, m.End, m.SentNum, coref.ErrMalformedMention)
			}
			row := rows[m.SentNum]
			n := m.End - m.Start
			if n == 1 {
				row[m.Start] = append(row[m.Start], marker{id: id, open: true, close: true, length: 1})
				continue
			}
			row[m.Start] = append(row[m.Start], marker{id: id, open: true, length: n})
			row[m.End-1] = append(row[m.End-1], marker{id: id, close: true, length: n})
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#begin document (%s); part %03d\n", doc.ID, doc.Part)
	for i, s := range doc.Sentences {
		for j, tok := range s.Tokens {
			fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t%s\n", doc.ID, doc.Part, j, tok.Word, column(rows[i][j]))
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("#end document\n")
	return bw.Flush()
}

// column renders the markers of one token: openings outermost first, then
// single-token mentions, then closings innermost first.
func column(ms []marker) string {
	if len(ms) == 0 {
		return "-"
	}
	sort.SliceStable(ms, func(i, j int) bool {
		ri, rj := rank(ms[i]), rank(ms[j])
		if ri != rj {
			return ri < rj
		}
		if ms[i].open && !ms[i].close {
			return ms[i].length > ms[j].length
		}
		if ms[i].close && !ms[i].open {
			return ms[i].length < ms[j].length
		}
		return ms[i].id < ms[j].id
	})

	parts := pool.GetStringSlice()
	defer func() { pool.PutStringSlice(parts) }()
	b := pool.GetStringBuilder()
	defer pool.PutStringBuilder(b)
	for _, m := range ms {
		b.Reset()
		if m.open {
			b.WriteByte('(')
		}
		b.WriteString(strconv.Itoa(m.id))
		if m.close {
			b.WriteByte(')')
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "|")
}

func rank(m marker) int {
	switch {
	case m.open && !m.close:
		return 0
	case m.open && m.close:
		return 1
	}
	return 2
}

var beginRe = regexp.MustCompile(`^#begin document \((.*)\);\s*part\s+(\d+)`)

// Parse reads every document part in r. Columns are separated by
// whitespace; the word is the fourth column and the coreference column is
// the last.
func Parse(r io.Reader) ([]*Document, error) {
	var (
		docs  []*Document
		cur   *Document
		sent  []string
		open  map[int][]Span
		lines int
	)
	flush := func() {
		if cur != nil && len(sent) > 0 {
			cur.Words = append(cur.Words, sent)
			sent = nil
		}
	}
	fail := func(format string, args ...any) ([]*Document, error) {
		return nil, fmt.Errorf("%w: line %d: %s", ErrSyntax, lines, fmt.Sprintf(format, args...))
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines++
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "#begin document"):
			if cur != nil {
				return fail("nested #begin document")
			}
			m := beginRe.FindStringSubmatch(line)
			if m == nil {
				return fail("bad header %q", line)
			}
			part, _ := strconv.Atoi(m[2])
			cur = &Document{ID: m[1], Part: part, Chains: make(map[int][]Span)}
			open = make(map[int][]Span)
		case strings.HasPrefix(line, "#end document"):
			if cur == nil {
				return fail("#end document without #begin")
			}
			flush()
			for id, spans := range open {
				if len(spans) > 0 {
					return fail("cluster %d left open", id)
				}
			}
			for _, spans := range cur.Chains {
				sortSpans(spans)
			}
			docs = append(docs, cur)
			cur = nil
		case strings.TrimSpace(line) == "":
			flush()
		case strings.HasPrefix(line, "#"):
			// comment
		default:
			if cur == nil {
				return fail("token outside a document")
			}
			fields := strings.Fields(line)
			if len(fields) < 5 {
				return fail("expected at least 5 columns, got %d", len(fields))
			}
			sentIdx, tokIdx := len(cur.Words), len(sent)
			sent = append(sent, fields[3])
			if err := readColumn(fields[len(fields)-1], sentIdx, tokIdx, cur.Chains, open); err != nil {
				return fail("%v", err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading conll: %w", err)
	}
	if cur != nil {
		return fail("missing #end document")
	}
	return docs, nil
}

func readColumn(col string, sentIdx, tokIdx int, chains, open map[int][]Span) error {
	if col == "-" {
		return nil
	}
	for _, item := range strings.Split(col, "|") {
		opens := strings.HasPrefix(item, "(")
		closes := strings.HasSuffix(item, ")")
		id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(item, "("), ")"))
		if err != nil || (!opens && !closes) {
			return fmt.Errorf("bad marker %q", item)
		}
		switch {
		case opens && closes:
			chains[id] = append(chains[id], Span{Sentence: sentIdx, Start: tokIdx, End: tokIdx + 1})
		case opens:
			open[id] = append(open[id], Span{Sentence: sentIdx, Start: tokIdx})
		default:
			stack := open[id]
			if len(stack) == 0 {
				return fmt.Errorf("cluster %d closed without opening", id)
			}
			sp := stack[len(stack)-1]
			open[id] = stack[:len(stack)-1]
			if sp.Sentence != sentIdx {
				return fmt.Errorf("cluster %d spans sentences", id)
			}
			sp.End = tokIdx + 1
			chains[id] = append(chains[id], sp)
		}
	}
	return nil
}

// Spans returns the chains as span lists keyed by chain id, in the same
// order Parse produces, so written and parsed output compare directly.
func Spans(chains map[int]*coref.Chain) map[int][]Span {
	out := make(map[int][]Span, len(chains))
	for id, c := range chains {
		spans := make([]Span, 0, len(c.Mentions))
		for _, m := range c.Mentions {
			spans = append(spans, Span{Sentence: m.SentNum, Start: m.Start, End: m.End})
		}
		sortSpans(spans)
		out[id] = spans
	}
	return out
}

// sortSpans orders spans by position, longer first on a shared start.
func sortSpans(spans []Span) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Sentence != spans[j].Sentence {
			return spans[i].Sentence < spans[j].Sentence
		}
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
}
