package topology

import (
	"fmt"
	"strings"
)

// DefaultDelimiter joins the two entity ids of an edge table key.
const DefaultDelimiter = "-"

// PairKeyParser splits edge table keys into entity id pairs.
//
// Entity ids may themselves contain the delimiter, so a key can have several
// candidate splits. A key with exactly one candidate is taken as is. A key with
// several is resolved only when exactly one candidate names two known ids;
// anything else is rejected rather than guessed.
type PairKeyParser struct {
	delimiter string
	known     map[string]struct{}
}

// NewPairKeyParser creates a parser that resolves ambiguous keys against known ids.
func NewPairKeyParser(delimiter string, known []string) *PairKeyParser {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	set := make(map[string]struct{}, len(known))
	for _, id := range known {
		set[id] = struct{}{}
	}
	return &PairKeyParser{delimiter: delimiter, known: set}
}

// Delimiter returns the separator this parser splits on.
func (p *PairKeyParser) Delimiter() string {
	return p.delimiter
}

// Parse splits key into its two entity ids.
func (p *PairKeyParser) Parse(key string) (string, string, error) {
	candidates := p.candidates(key)

	switch len(candidates) {
	case 0:
		return "", "", NewError("edges").Key(key).Cause(ErrInvalidPairKey).Err()
	case 1:
		return candidates[0][0], candidates[0][1], nil
	}

	var match []string
	for _, c := range candidates {
		if p.isKnown(c[0]) && p.isKnown(c[1]) {
			if match != nil {
				return "", "", NewError("edges").Key(key).
					Cause(fmt.Errorf("%w: splits %q|%q and %q|%q both name known entities",
						ErrAmbiguousPairKey, match[0], match[1], c[0], c[1])).Err()
			}
			match = []string{c[0], c[1]}
		}
	}
	if match == nil {
		return "", "", NewError("edges").Key(key).
			Cause(fmt.Errorf("%w: %d possible splits, none naming two known entities",
				ErrAmbiguousPairKey, len(candidates))).Err()
	}
	return match[0], match[1], nil
}

// candidates lists every split at a delimiter occurrence with two non-empty halves.
func (p *PairKeyParser) candidates(key string) [][2]string {
	var out [][2]string
	for i := 0; i+len(p.delimiter) <= len(key); {
		j := strings.Index(key[i:], p.delimiter)
		if j < 0 {
			break
		}
		at := i + j
		left, right := key[:at], key[at+len(p.delimiter):]
		if left != "" && right != "" {
			out = append(out, [2]string{left, right})
		}
		i = at + 1
	}
	return out
}

func (p *PairKeyParser) isKnown(id string) bool {
	_, ok := p.known[id]
	return ok
}

// JoinPairKey encodes a pair the way dump files do.
func JoinPairKey(a, b, delimiter string) string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return a + delimiter + b
}
