package units

import (
	"math/big"
	"sort"
	"strconv"
)

// Prefix is a decimal magnitude prefix such as "k" (1e3) or "G" (1e9).
type Prefix struct {
	Symbol string
	Name   string
	Factor float64
}

// SI prefixes. Both the micro sign (U+00B5) and the Greek mu (U+03BC) are
// accepted for micro.
var siPrefixes = []Prefix{
	{"Y", "yotta", 1e24},
	{"Z", "zetta", 1e21},
	{"E", "exa", 1e18},
	{"P", "peta", 1e15},
	{"T", "tera", 1e12},
	{"G", "giga", 1e9},
	{"M", "mega", 1e6},
	{"k", "kilo", 1e3},
	{"h", "hecto", 1e2},
	{"da", "deka", 1e1},
	{"d", "deci", 1e-1},
	{"c", "centi", 1e-2},
	{"m", "milli", 1e-3},
	{"u", "micro", 1e-6},
	{"µ", "micro", 1e-6},
	{"μ", "micro", 1e-6},
	{"n", "nano", 1e-9},
	{"p", "pico", 1e-12},
	{"f", "femto", 1e-15},
	{"a", "atto", 1e-18},
	{"z", "zepto", 1e-21},
	{"y", "yocto", 1e-24},
}

type prefixForm struct {
	text   string
	factor *big.Rat
}

// exactFactor reads the shortest decimal form of f, so 1e-3 becomes exactly
// 1/1000 rather than the binary value nearest to it.
func exactFactor(f float64) *big.Rat {
	r, _ := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	return r
}

// prefixForms lists every prefix spelling (symbols and long names), longest
// first so "da" is tried before "d" and "mega" before "m".
var prefixForms = func() []prefixForm {
	var forms []prefixForm
	seen := make(map[string]bool)
	for _, p := range siPrefixes {
		for _, text := range []string{p.Symbol, p.Name} {
			if seen[text] {
				continue
			}
			seen[text] = true
			forms = append(forms, prefixForm{text: text, factor: exactFactor(p.Factor)})
		}
	}
	sort.SliceStable(forms, func(i, j int) bool {
		return len(forms[i].text) > len(forms[j].text)
	})
	return forms
}()

// Prefixes returns the supported SI prefixes from largest to smallest.
func Prefixes() []Prefix {
	out := make([]Prefix, len(siPrefixes))
	copy(out, siPrefixes)
	return out
}
