package textutil

// autojunkThreshold is the second-sequence length at which popular runes stop
// seeding matches.
const autojunkThreshold = 200

// Matcher scores candidate strings against a fixed second sequence. Building
// the rune index once lets a lookup score a whole catalog without
// re-indexing the query.
type Matcher struct {
	b   []rune
	b2j map[rune][]int
}

// NewMatcher indexes b for repeated Ratio calls.
func NewMatcher(b string) *Matcher {
	runes := []rune(b)
	b2j := make(map[rune][]int)
	for j, r := range runes {
		b2j[r] = append(b2j[r], j)
	}
	if n := len(runes); n >= autojunkThreshold {
		limit := n/100 + 1
		for r, idx := range b2j {
			if len(idx) > limit {
				delete(b2j, r)
			}
		}
	}
	return &Matcher{b: runes, b2j: b2j}
}

// Ratio returns the similarity of a to the matcher's sequence in [0,1].
// Two empty strings are identical.
func (m *Matcher) Ratio(a string) float64 {
	ar := []rune(a)
	total := len(ar) + len(m.b)
	if total == 0 {
		return 1
	}
	return 2 * float64(m.matchingRunes(ar)) / float64(total)
}

// Ratio is a convenience wrapper for a single comparison.
func Ratio(a, b string) float64 {
	return NewMatcher(b).Ratio(a)
}

type span struct {
	alo, ahi, blo, bhi int
}

func (m *Matcher) matchingRunes(a []rune) int {
	matched := 0
	stack := []span{{0, len(a), 0, len(m.b)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, k := m.longestMatch(a, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			stack = append(stack, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			stack = append(stack, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the
// window, preferring the earliest start in a and then in b.
func (m *Matcher) longestMatch(a []rune, alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	// Popular runes never seed a match but may still extend one.
	for besti > alo && bestj > blo && a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}
