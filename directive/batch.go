package directive

import (
	"fmt"
	"strconv"
	"unicode"
)

// Batch is a parsed batch command.
type Batch struct {
	Clauses []BatchClause
	// Warnings lists the leniencies applied while parsing: clamped angles and
	// ignored clause ranges.
	Warnings []string
}

// Resolve applies the batch to a document of pageCount pages.
func (b Batch) Resolve(pageCount int) Rotations {
	return ResolveBatch(pageCount, b.Clauses)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokSemi
	tokComma
	tokMinus
	tokPlus
	tokInt
	tokEven
	tokOdd
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokSemi:
		return "';'"
	case tokComma:
		return "','"
	case tokMinus:
		return "'-'"
	case tokPlus:
		return "'+'"
	case tokInt:
		return "number"
	case tokEven:
		return "'e'"
	case tokOdd:
		return "'o'"
	}
	return "unknown"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits a batch command into tokens. Whitespace only separates tokens.
func lex(s string) ([]token, error) {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		c := rs[i]
		switch {
		case unicode.IsSpace(c):
			i++
			continue
		case unicode.IsDigit(c):
			start := i
			for i < len(rs) && unicode.IsDigit(rs[i]) {
				i++
			}
			toks = append(toks, token{kind: tokInt, text: string(rs[start:i]), pos: start})
			continue
		}
		var k tokenKind
		switch c {
		case '(':
			k = tokLParen
		case ')':
			k = tokRParen
		case ';':
			k = tokSemi
		case ',':
			k = tokComma
		case '-':
			k = tokMinus
		case '+':
			k = tokPlus
		case 'e', 'E':
			k = tokEven
		case 'o', 'O':
			k = tokOdd
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedDirective, c, i)
		}
		toks = append(toks, token{kind: k, text: string(c), pos: i})
		i++
	}
	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

type batchParser struct {
	toks     []token
	pos      int
	warnings []string
}

// ParseBatch parses a batch command such as "(e 90, o -90); (e 0, o 180)".
//
// Every clause needs one even and one odd part. A clause may name a page
// range ("(2-5) e 90, o 0"); the range is accepted but the clause still
// covers the whole document. Angles that are not a multiple of 90 are clamped
// to 0. Both leniencies are reported in Batch.Warnings.
func ParseBatch(command string) (Batch, error) {
	toks, err := lex(command)
	if err != nil {
		return Batch{}, err
	}
	p := &batchParser{toks: toks}

	var clauses []BatchClause
	for {
		if p.peek().kind == tokEOF && len(clauses) > 0 {
			break
		}
		c, err := p.clause(len(clauses) + 1)
		if err != nil {
			return Batch{}, err
		}
		clauses = append(clauses, c)

		if p.peek().kind == tokEOF {
			break
		}
		if _, err := p.expect(tokSemi); err != nil {
			return Batch{}, err
		}
	}
	return Batch{Clauses: clauses, Warnings: p.warnings}, nil
}

func (p *batchParser) peek() token {
	return p.toks[p.pos]
}

func (p *batchParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *batchParser) expect(k tokenKind) (token, error) {
	t := p.next()
	if t.kind != k {
		return t, fmt.Errorf("%w: expected %s, found %s at offset %d", ErrMalformedDirective, k, t.kind, t.pos)
	}
	return t, nil
}

func (p *batchParser) clause(n int) (BatchClause, error) {
	var c BatchClause

	wrapped := false
	if p.peek().kind == tokLParen {
		p.next()
		wrapped = true
	}

	if p.peek().kind == tokInt {
		r, err := p.pageRange()
		if err != nil {
			return c, err
		}
		c.Range = &r
		// "(2-5) e 90, o 0": the parentheses held only the range.
		if wrapped && p.peek().kind == tokRParen {
			p.next()
			wrapped = false
			if p.peek().kind == tokLParen {
				p.next()
				wrapped = true
			}
		}
	}

	var haveEven, haveOdd bool
	for i := 0; i < 2; i++ {
		if i == 1 {
			if _, err := p.expect(tokComma); err != nil {
				return c, err
			}
		}
		t := p.next()
		a, err := p.angle(n, t)
		if err != nil {
			return c, err
		}
		switch {
		case t.kind == tokEven && !haveEven:
			c.Even, haveEven = a, true
		case t.kind == tokOdd && !haveOdd:
			c.Odd, haveOdd = a, true
		default:
			return c, fmt.Errorf("%w: clause %d repeats %s at offset %d", ErrMalformedDirective, n, t.kind, t.pos)
		}
	}

	if wrapped {
		if _, err := p.expect(tokRParen); err != nil {
			return c, err
		}
	}

	if r := c.Range; r != nil {
		if r.First < 0 || r.Last < r.First {
			p.warnings = append(p.warnings, fmt.Sprintf("clause %d: page range %d-%d is invalid, ignored", n, r.First+1, r.Last+1))
			c.Range = nil
		} else {
			p.warnings = append(p.warnings, fmt.Sprintf("clause %d: page range %d-%d is not supported, applying to all pages", n, r.First+1, r.Last+1))
		}
	}
	return c, nil
}

// pageRange parses "first-last" and converts it to 0-based indexes. The
// bounds are checked by the caller.
func (p *batchParser) pageRange() (PageRange, error) {
	first, err := p.integer()
	if err != nil {
		return PageRange{}, err
	}
	if _, err := p.expect(tokMinus); err != nil {
		return PageRange{}, err
	}
	last, err := p.integer()
	if err != nil {
		return PageRange{}, err
	}
	return PageRange{First: first - 1, Last: last - 1}, nil
}

// angle parses the signed number following an 'e' or 'o' marker.
func (p *batchParser) angle(n int, marker token) (Angle, error) {
	if marker.kind != tokEven && marker.kind != tokOdd {
		return 0, fmt.Errorf("%w: expected 'e' or 'o', found %s at offset %d", ErrMalformedDirective, marker.kind, marker.pos)
	}
	sign := 1
	switch p.peek().kind {
	case tokMinus:
		p.next()
		sign = -1
	case tokPlus:
		p.next()
	}
	v, err := p.integer()
	if err != nil {
		return 0, err
	}
	a := Angle(sign * v)
	if !a.Valid() {
		p.warnings = append(p.warnings, fmt.Sprintf("clause %d: %s angle %d is not a multiple of 90, using 0", n, marker.text, int(a)))
		return 0, nil
	}
	return a, nil
}

func (p *batchParser) integer() (int, error) {
	t, err := p.expect(tokInt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q at offset %d: %v", ErrMalformedDirective, t.text, t.pos, err)
	}
	return v, nil
}
