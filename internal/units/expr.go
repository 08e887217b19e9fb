package units

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// term is a scale factor times a dimension: the reduced form of any unit
// expression. The factor is exact and never modified in place; every
// operation allocates a new one.
type term struct {
	factor *big.Rat
	dims   Dimension
}

func (t term) mul(o term) term {
	return term{factor: new(big.Rat).Mul(t.factor, o.factor), dims: t.dims.Mul(o.dims)}
}

// div panics if o has a zero factor; the parser checks first.
func (t term) div(o term) term {
	return term{factor: new(big.Rat).Quo(t.factor, o.factor), dims: t.dims.Div(o.dims)}
}

// pow panics if n is negative and t has a zero factor; the parser checks
// first.
func (t term) pow(n int) term {
	e := big.NewInt(int64(n))
	e.Abs(e)
	num := new(big.Int).Exp(t.factor.Num(), e, nil)
	den := new(big.Int).Exp(t.factor.Denom(), e, nil)
	if n < 0 {
		num, den = den, num
	}
	return term{factor: new(big.Rat).SetFrac(num, den), dims: t.dims.Pow(n)}
}

// ratio returns a/b as the nearest float64. A zero b gives an infinity or
// NaN as float division would.
func ratio(a, b *big.Rat) float64 {
	if b.Sign() == 0 {
		if a.Sign() == 0 {
			return math.NaN()
		}
		return math.Inf(a.Sign())
	}
	f, _ := new(big.Rat).Quo(a, b).Float64()
	return f
}

// resolver maps one unit name to its reduced term.
type resolver func(name string) (term, error)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokName
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
	tokMinus
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits an expression into tokens. Names start with a letter or
// underscore and may contain digits ("CO2", "HFC4310mee", "cC4F8").
func lex(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				toks = append(toks, token{tokPow, "**", i})
				i += 2
				continue
			}
			toks = append(toks, token{tokMul, "*", i})
			i++
		case r == '^':
			toks = append(toks, token{tokPow, "^", i})
			i++
		case r == '/':
			toks = append(toks, token{tokDiv, "/", i})
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == '-':
			toks = append(toks, token{tokMinus, "-", i})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			// exponent part: 1e-6, 2.5E3
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			toks = append(toks, token{tokNumber, string(runes[start:i]), start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			toks = append(toks, token{tokName, string(runes[start:i]), start})
		default:
			return nil, fmt.Errorf("unexpected character %q at %d", r, i)
		}
	}
	toks = append(toks, token{tokEOF, "", len(runes)})
	return toks, nil
}

// parser is a recursive-descent parser over the grammar
//
//	expr   := term { ("*" | "/" | juxtaposition) term }
//	term   := factor [ ("**" | "^") ["-"] integer ]
//	factor := number | name | "(" expr ")"
type parser struct {
	toks    []token
	pos     int
	resolve resolver
}

// evaluate parses and reduces src using resolve for every name.
func evaluate(src string, resolve resolver) (term, error) {
	src = norm.NFC.String(strings.TrimSpace(src))
	if src == "" {
		return term{}, invalidExpression(src, "empty expression")
	}

	toks, err := lex(src)
	if err != nil {
		return term{}, invalidExpression(src, err.Error())
	}

	p := &parser{toks: toks, resolve: resolve}
	t, err := p.expr()
	if err != nil {
		return term{}, wrapExpressionError(src, err)
	}
	if p.peek().kind != tokEOF {
		tok := p.peek()
		return term{}, invalidExpression(src, fmt.Sprintf("unexpected %q at %d", tok.text, tok.pos))
	}
	return t, nil
}

// evaluateNumber evaluates a purely numeric expression such as "12/44".
func evaluateNumber(src string) (*big.Rat, error) {
	t, err := evaluate(src, func(name string) (term, error) {
		return term{}, fmt.Errorf("unit %q not allowed in a numeric factor", name)
	})
	if err != nil {
		return nil, err
	}
	if !t.dims.IsDimensionless() {
		return nil, invalidExpression(src, "factor must be dimensionless")
	}
	return t.factor, nil
}

// Names returns the unit names referenced by expr, in order of appearance and
// without duplicates. Numbers and operators are skipped; the expression is
// not checked for well-formedness beyond lexing.
func Names(expr string) ([]string, error) {
	toks, err := lex(norm.NFC.String(expr))
	if err != nil {
		return nil, invalidExpression(expr, err.Error())
	}
	var names []string
	seen := make(map[string]bool)
	for _, tok := range toks {
		if tok.kind != tokName || seen[tok.text] {
			continue
		}
		seen[tok.text] = true
		names = append(names, tok.text)
	}
	return names, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expr() (term, error) {
	left, err := p.term()
	if err != nil {
		return term{}, err
	}

	for {
		switch p.peek().kind {
		case tokMul:
			p.next()
			right, err := p.term()
			if err != nil {
				return term{}, err
			}
			left = left.mul(right)
		case tokDiv:
			p.next()
			right, err := p.term()
			if err != nil {
				return term{}, err
			}
			if right.factor.Sign() == 0 {
				return term{}, fmt.Errorf("division by zero")
			}
			left = left.div(right)
		case tokNumber, tokName, tokLParen:
			right, err := p.term()
			if err != nil {
				return term{}, err
			}
			left = left.mul(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) term() (term, error) {
	base, err := p.factor()
	if err != nil {
		return term{}, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()

	negative := false
	if p.peek().kind == tokMinus {
		p.next()
		negative = true
	}
	tok := p.next()
	if tok.kind != tokNumber {
		return term{}, fmt.Errorf("expected integer exponent at %d", tok.pos)
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil {
		return term{}, fmt.Errorf("exponent %q must be an integer", tok.text)
	}
	if negative {
		if base.factor.Sign() == 0 {
			return term{}, fmt.Errorf("zero raised to a negative power")
		}
		n = -n
	}
	return base.pow(n), nil
}

func (p *parser) factor() (term, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		v, ok := new(big.Rat).SetString(tok.text)
		if !ok {
			return term{}, fmt.Errorf("invalid number %q", tok.text)
		}
		return term{factor: v, dims: Dimensionless}, nil
	case tokName:
		return p.resolve(tok.text)
	case tokLParen:
		inner, err := p.expr()
		if err != nil {
			return term{}, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return term{}, fmt.Errorf("expected ')' at %d", closing.pos)
		}
		return inner, nil
	case tokEOF:
		return term{}, fmt.Errorf("unexpected end of expression")
	default:
		return term{}, fmt.Errorf("unexpected %q at %d", tok.text, tok.pos)
	}
}
