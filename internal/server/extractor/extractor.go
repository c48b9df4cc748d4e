// Package extractor finds monetary amounts in free text.
//
// Recognition patterns are applied case-insensitively in a fixed order.
// Each pattern contributes all of its non-overlapping matches, left to right,
// before the next pattern runs. A mention matched by two patterns is reported
// twice: results are not deduplicated across patterns.
package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Match is one detected amount together with the text that matched.
type Match struct {
	Amount  decimal.Decimal
	Context string
}

// Func is the extractor signature the pipeline depends on.
type Func func(text string) ([]Match, error)

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)₹\s*\p{Nd}+`),
	regexp.MustCompile(`(?i)Rs\.?\s*\p{Nd}+`),
	regexp.MustCompile(`(?i)INR\s*\p{Nd}+`),
	regexp.MustCompile(`(?i)spent\s*₹?\s*\p{Nd}+`),
	regexp.MustCompile(`(?i)paid\s*₹?\s*\p{Nd}+`),
	regexp.MustCompile(`(?i)cost\s*₹?\s*\p{Nd}+`),
}

var digitsRE = regexp.MustCompile(`\p{Nd}+`)

// digitValue returns the value of a Unicode decimal digit. Every script's
// digits occupy ten consecutive code points starting at zero.
func digitValue(r rune) (int, bool) {
	for _, rng := range unicode.Nd.R16 {
		if lo, hi := rune(rng.Lo), rune(rng.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	for _, rng := range unicode.Nd.R32 {
		if lo, hi := rune(rng.Lo), rune(rng.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	return 0, false
}

// asciiDigits rewrites a run of decimal digits from any script as 0-9.
func asciiDigits(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		v, ok := digitValue(r)
		if !ok {
			return "", fmt.Errorf("not a decimal digit: %q", r)
		}
		b.WriteByte(byte('0' + v))
	}
	return b.String(), nil
}

// Patterns returns the recognition patterns in application order.
func Patterns() []string {
	out := make([]string, len(patterns))
	for i, re := range patterns {
		out[i] = re.String()
	}
	return out
}

// Extract scans text and returns the detected amounts in pattern order, then
// match order. The amount is the first run of decimal digits in a match, in
// any script, parsed as an exact decimal; no grouping separators are recognised. No match yields
// an empty result, not an error.
func Extract(text string) ([]Match, error) {
	var out []Match
	for _, re := range patterns {
		for _, found := range re.FindAllString(text, -1) {
			run := digitsRE.FindString(found)
			if run == "" {
				continue
			}
			digits, err := asciiDigits(run)
			if err != nil {
				return nil, fmt.Errorf("parse amount %q: %w", run, err)
			}
			amount, err := decimal.NewFromString(digits)
			if err != nil {
				return nil, fmt.Errorf("parse amount %q: %w", digits, err)
			}
			out = append(out, Match{Amount: amount, Context: found})
		}
	}
	return out, nil
}
