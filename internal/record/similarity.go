package record

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

var levenshtein = metrics.NewLevenshtein()

// stringSimilarity returns a normalized [0,1] similarity of two strings.
func stringSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return strutil.Similarity(a, b, levenshtein)
}

// PartialRatio returns the best similarity (0..100) of the shorter string
// against any equally long window of the longer one.
func PartialRatio(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if short == long {
		return 100
	}
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		s := strutil.Similarity(short, long[i:i+len(short)], levenshtein)
		if s > best {
			best = s
		}
		if best == 1.0 {
			break
		}
	}
	// Also compare against the full longer string so very different lengths
	// do not score a spurious 100 from a lucky window.
	full := strutil.Similarity(short, long, levenshtein)
	if len(long) <= 2*len(short) && full > best {
		best = full
	}
	return int(best * 100)
}

// tokenSortSimilarity compares the sorted token sets of two strings.
func tokenSortSimilarity(a, b string) float64 {
	return stringSimilarity(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	sortStrings(fields)
	return strings.Join(fields, " ")
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Similarity weights per identifying field.
const (
	weightTitle     = 0.4
	weightAuthor    = 0.3
	weightContainer = 0.2
	weightYear      = 0.1
)

// RecordSimilarity returns a weighted [0,1] similarity of two records over
// title, author, container (journal or booktitle), and year.
func RecordSimilarity(a, b *Record) float64 {
	title := tokenSortSimilarity(a.Field(FieldTitle), b.Field(FieldTitle))
	author := tokenSortSimilarity(a.Field(FieldAuthor), b.Field(FieldAuthor))
	container := tokenSortSimilarity(containerTitle(a), containerTitle(b))

	year := 0.0
	ay, by := a.Field(FieldYear), b.Field(FieldYear)
	switch {
	case ay != "" && ay == by:
		year = 1.0
	case ay == "" || by == "":
		year = 0.0
	default:
		// Off-by-one years happen with online-first publication.
		if yearDistance(ay, by) == 1 {
			year = 0.5
		}
	}

	return weightTitle*title + weightAuthor*author + weightContainer*container + weightYear*year
}

func containerTitle(r *Record) string {
	if r.HasField(FieldJournal) {
		return r.Field(FieldJournal)
	}
	return r.Field(FieldBooktitle)
}

func yearDistance(a, b string) int {
	ai, aok := atoi(a)
	bi, bok := atoi(b)
	if !aok || !bok {
		return -1
	}
	d := ai - bi
	if d < 0 {
		d = -d
	}
	return d
}

func atoi(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
