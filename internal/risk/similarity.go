package risk

import "strings"

// Confidence classifies how certain a typosquat candidate is.
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
)

// Detection methods for a typosquat candidate.
const (
	MethodExactMalicious = "exact-malicious-match"
	MethodSingleChar     = "single-char-diff"
	MethodTransposition  = "character-transposition"
	MethodConfusable     = "confusable-substitution"
	MethodEditDistance   = "edit-distance"
)

// Candidate is one ranked typosquat suspicion for a package name.
// Produced fresh per lookup, never cached.
type Candidate struct {
	Target     string
	Distance   int
	Confidence Confidence
	Method     string
	Severity   Severity
	Reason     string
}

// levenshtein computes the unit-cost edit distance between two strings by
// full dynamic programming. No shortcuts that could change the result.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev = curr
	}
	return prev[lb]
}

// similarity returns the normalized score 1 - distance/maxLen.
func similarity(distance int, a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// EvaluateName classifies a package name against the known-malicious and
// known-legitimate tables. It returns nil when the name is a known
// legitimate package or no admissible candidate exists.
func (e *Engine) EvaluateName(name string) *Candidate {
	if entry, ok := e.tables.Malicious[name]; ok {
		// Distance is still computed for reporting; classification is
		// already decided by the table.
		return &Candidate{
			Target:     entry.Impersonates,
			Distance:   levenshtein(name, entry.Impersonates),
			Confidence: ConfidenceConfirmed,
			Method:     MethodExactMalicious,
			Severity:   entry.Severity,
			Reason:     entry.Reason,
		}
	}
	if _, ok := e.legitSet[name]; ok {
		return nil
	}

	best := -1
	bestTarget := ""
	for _, legit := range e.tables.Legitimate {
		d := levenshtein(name, legit)
		if d == 0 || d > e.opts.MaxEditDistance {
			continue
		}
		if similarity(d, name, legit) <= e.opts.MinSimilarity {
			continue
		}
		// Strict less keeps the earliest table entry on ties.
		if best == -1 || d < best {
			best = d
			bestTarget = legit
		}
	}
	if best == -1 {
		return nil
	}

	c := &Candidate{
		Target:   bestTarget,
		Distance: best,
		Method:   e.classifyMethod(name, bestTarget, best),
	}
	switch best {
	case 1:
		c.Confidence = ConfidenceHigh
		c.Severity = SeverityCritical
	case 2:
		c.Confidence = ConfidenceMedium
		c.Severity = SeverityHigh
	default:
		c.Confidence = ConfidenceLow
		c.Severity = SeverityHigh
	}
	return c
}

// classifyMethod refines the detection label. Confusable substitutions win
// over everything; a distance of one is a single character difference;
// near-equal strings are labeled as transpositions; the rest stay generic.
func (e *Engine) classifyMethod(name, legit string, distance int) string {
	if e.confusableTransforms(name, legit) {
		return MethodConfusable
	}
	if distance == 1 {
		return MethodSingleChar
	}
	if len(name) == len(legit) && diffPositions(name, legit) <= 2 {
		return MethodTransposition
	}
	if abs(len(name)-len(legit)) <= 1 && distance <= 2 {
		return MethodTransposition
	}
	return MethodEditDistance
}

// confusableTransforms reports whether swapping a single occurrence of a
// confusable pair turns one string into the other exactly.
func (e *Engine) confusableTransforms(a, b string) bool {
	for _, pair := range e.opts.Confusables {
		if swapsInto(a, b, pair[0], pair[1]) || swapsInto(a, b, pair[1], pair[0]) {
			return true
		}
	}
	return false
}

// swapsInto reports whether replacing one occurrence of from with to in a
// yields b.
func swapsInto(a, b, from, to string) bool {
	for i := 0; ; i++ {
		idx := strings.Index(a[i:], from)
		if idx < 0 {
			return false
		}
		i += idx
		if a[:i]+to+a[i+len(from):] == b {
			return true
		}
	}
}

// diffPositions counts positions with differing bytes; only meaningful for
// equal-length strings.
func diffPositions(a, b string) int {
	n := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
