package udq

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
)

// Context resolves identifiers while an expression is evaluated.
type Context struct {
	State  *summary.State
	Wells  []string // wells defined at the current step, in insertion order
	Groups []string
	// MatchWells resolves a quoted well selector (pattern or well list).
	MatchWells func(pattern string) ([]string, error)
}

func (c *Context) matchWells(sel string) ([]string, error) {
	if c.MatchWells == nil {
		return filterNames(c.Wells, sel), nil
	}
	return c.MatchWells(sel)
}

func filterNames(names []string, sel string) []string {
	var out []string
	for _, n := range names {
		if n == sel || (strings.HasSuffix(sel, "*") && strings.HasPrefix(n, strings.TrimSuffix(sel, "*"))) {
			out = append(out, n)
		}
	}
	return out
}

// Expr is a parsed UDQ expression.
type Expr interface {
	Eval(ctx *Context) (Set, error)
}

type numberExpr float64

func (n numberExpr) Eval(*Context) (Set, error) { return scalar(defined(float64(n))), nil }

type identExpr struct {
	keyword  string
	selector string
}

func (e identExpr) Eval(ctx *Context) (Set, error) {
	switch e.keyword[0] {
	case 'W':
		names := ctx.Wells
		if e.selector != "" {
			var err error
			if names, err = ctx.matchWells(e.selector); err != nil {
				return Set{}, err
			}
		}
		out := newEntitySet(WellSet, names)
		for _, w := range names {
			if v, err := ctx.State.GetWellVar(w, e.keyword); err == nil {
				out.Values[w] = defined(v)
			}
		}
		return out, nil
	case 'G':
		names := ctx.Groups
		if e.selector != "" {
			names = filterNames(ctx.Groups, e.selector)
		}
		out := newEntitySet(GroupSet, names)
		for _, g := range names {
			if v, err := ctx.State.GetGroupVar(g, e.keyword); err == nil {
				out.Values[g] = defined(v)
			}
		}
		return out, nil
	}
	if e.selector != "" {
		return Set{}, fmt.Errorf("selector on scalar keyword %s: %w", e.keyword, simerr.ErrInvalidArgument)
	}
	if v, err := ctx.State.Get(e.keyword); err == nil {
		return scalar(defined(v)), nil
	}
	return scalar(Value{}), nil
}

type negExpr struct{ x Expr }

func (e negExpr) Eval(ctx *Context) (Set, error) {
	s, err := e.x.Eval(ctx)
	if err != nil {
		return Set{}, err
	}
	return s.mapValues(func(v float64) (float64, error) { return -v, nil })
}

type binaryExpr struct {
	op   byte
	l, r Expr
}

func (e binaryExpr) Eval(ctx *Context) (Set, error) {
	l, err := e.l.Eval(ctx)
	if err != nil {
		return Set{}, err
	}
	r, err := e.r.Eval(ctx)
	if err != nil {
		return Set{}, err
	}
	return combine(l, r, arith(e.op))
}

type callExpr struct {
	fn  string
	arg Expr
}

func (e callExpr) Eval(ctx *Context) (Set, error) {
	s, err := e.arg.Eval(ctx)
	if err != nil {
		return Set{}, err
	}
	if aggregates[e.fn] {
		return aggregate(e.fn, s), nil
	}
	return s.mapValues(elementwise[e.fn])
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokSelector
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || c == '.':
			j := i
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || src[j] == '.') {
				j++
			}
			if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
				k := j + 1
				if k < len(src) && (src[k] == '+' || src[k] == '-') {
					k++
				}
				if k < len(src) && unicode.IsDigit(rune(src[k])) {
					for k < len(src) && unicode.IsDigit(rune(src[k])) {
						k++
					}
					j = k
				}
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j])) || src[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, strings.ToUpper(src[i:j])})
			i = j
		case c == '\'':
			j := strings.IndexByte(src[i+1:], '\'')
			if j < 0 {
				return nil, fmt.Errorf("unterminated quote in %q: %w", src, simerr.ErrInvalidArgument)
			}
			toks = append(toks, token{tokSelector, src[i+1 : i+1+j]})
			i += j + 2
		case strings.ContainsRune("+-*/^()", c):
			toks = append(toks, token{tokOp, string(c)})
			i++
		default:
			return nil, fmt.Errorf("unexpected %q in %q: %w", c, src, simerr.ErrInvalidArgument)
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

// Parse compiles a UDQ expression. Grammar, lowest precedence first:
//
//	sum    = term { ("+"|"-") term }
//	term   = unary { ("*"|"/") unary }
//	unary  = "-" unary | power
//	power  = atom [ "^" unary ]
//	atom   = number | FUNC "(" sum ")" | KEYWORD [ 'selector' ] | "(" sum ")"
func Parse(src string) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf("unexpected %q", t.text)
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("udq expression %q: %s: %w", p.src, fmt.Sprintf(format, args...), simerr.ErrInvalidArgument)
}

func (p *parser) sum() (Expr, error) {
	l, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text[0]
		r, err := p.term()
		if err != nil {
			return nil, err
		}
		l = binaryExpr{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *parser) term() (Expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") {
		op := p.next().text[0]
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = binaryExpr{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *parser) unary() (Expr, error) {
	if p.isOp("-") {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negExpr{x}, nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return binaryExpr{op: '^', l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) atom() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf("bad number %q", t.text)
		}
		return numberExpr(v), nil
	case tokIdent:
		if aggregates[t.text] || elementwise[t.text] != nil {
			if !p.isOp("(") {
				return nil, p.errorf("%s needs an argument", t.text)
			}
			p.next()
			arg, err := p.sum()
			if err != nil {
				return nil, err
			}
			if !p.isOp(")") {
				return nil, p.errorf("missing ) after %s argument", t.text)
			}
			p.next()
			return callExpr{fn: t.text, arg: arg}, nil
		}
		id := identExpr{keyword: t.text}
		if p.peek().kind == tokSelector {
			id.selector = p.next().text
		}
		return id, nil
	case tokOp:
		if t.text == "(" {
			e, err := p.sum()
			if err != nil {
				return nil, err
			}
			if !p.isOp(")") {
				return nil, p.errorf("missing )")
			}
			p.next()
			return e, nil
		}
		return nil, p.errorf("unexpected %q", t.text)
	}
	return nil, p.errorf("unexpected end of expression")
}
