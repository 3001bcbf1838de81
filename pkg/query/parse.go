package query

import (
	"regexp"
	"strconv"
	"strings"
)

const defaultLastNTicks = 10

var (
	whyIsRe  = regexp.MustCompile(`(?i)why is\s+([A-Za-z0-9_\-]+)`)
	lastNRe  = regexp.MustCompile(`(?i)last\s+(\d+)`)
	hintText = "[ERROR] Unknown query. Try: 'why is <service> failing?', 'what happened in the last N ticks?', 'top-impacted'"
)

// Kind identifies which form a parsed query took.
type Kind int

const (
	KindUnknown Kind = iota
	KindWhyFailing
	KindLastNTicks
	KindTopImpacted
)

// Parsed is the structured result of Parse.
type Parsed struct {
	Kind  Kind
	Token string // raw service-name token for KindWhyFailing
	N     int    // tick count for KindLastNTicks
}

// Parse matches the best-effort, case-insensitive query grammar of
// spec.md §6: "why is <name> failing?", "what happened (in the last <N>
// ticks)?", and "top-impacted"/"top impacted".
func Parse(text string) Parsed {
	q := strings.TrimSpace(text)
	lower := strings.ToLower(q)

	if strings.Contains(lower, "why is") && strings.Contains(lower, "failing") {
		if m := whyIsRe.FindStringSubmatch(q); m != nil {
			return Parsed{Kind: KindWhyFailing, Token: strings.TrimRight(strings.TrimSpace(m[1]), "?.!,;:")}
		}
		return Parsed{Kind: KindUnknown}
	}

	if strings.Contains(lower, "what happened") {
		n := defaultLastNTicks
		if m := lastNRe.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				n = v
			}
		}
		return Parsed{Kind: KindLastNTicks, N: n}
	}

	if strings.Contains(lower, "top-impacted") || strings.Contains(lower, "top impacted") {
		return Parsed{Kind: KindTopImpacted}
	}

	return Parsed{Kind: KindUnknown}
}

// Hint is the text returned for an unparseable query.
func Hint() string { return hintText }
