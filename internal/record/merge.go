package record

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidMergeError reports an attempt to merge two records that do not
// describe the same work.
type InvalidMergeError struct {
	A, B string
}

func (e *InvalidMergeError) Error() string {
	return fmt.Sprintf("invalid merge: %s / %s", e.A, e.B)
}

// ErrNotEnoughDataToIdentify is returned when a record lacks the fields
// needed to decide whether it matches another.
var ErrNotEnoughDataToIdentify = errors.New("not enough data to identify record")

// incompatibleThreshold: below this similarity on both title and author the
// two records cannot be the same work.
const incompatibleThreshold = 0.6

// sourceRank orders provenance sources by trust. Higher wins a merge
// conflict. The ranking is explicit and overridable via MergeOption.
type sourceRank int

const (
	rankOther sourceRank = iota
	rankProviderFeed
	rankDOISource
	rankCurated
)

// RankSource classifies a provenance source string.
func RankSource(source string) int {
	switch {
	case strings.HasPrefix(source, CuratedSourcePrefix+":") || source == CuratedSourcePrefix,
		strings.HasPrefix(source, CuratedFileName+"/"):
		return int(rankCurated)
	case strings.Contains(source, "doi.org/") || strings.HasPrefix(source, "https://doi.org"):
		return int(rankDOISource)
	case strings.Contains(source, ".bib/"):
		return int(rankProviderFeed)
	default:
		return int(rankOther)
	}
}

type mergeConfig struct {
	rank func(source string) int
}

// MergeOption adjusts merge behavior.
type MergeOption func(*mergeConfig)

// WithSourceRank overrides the default provenance-source ranking.
func WithSourceRank(rank func(string) int) MergeOption {
	return func(c *mergeConfig) { c.rank = rank }
}

// Merge folds other into r, field by field. Fields present in only one
// record are adopted; for fields present in both, the value whose
// provenance source ranks higher wins, with ties resolved in favor of the
// value more similar to the longer of the two. Origins are unioned.
//
// Returns InvalidMergeError when the identifying fields are incompatible
// (similarity below 0.6 on both title and author).
func (r *Record) Merge(other *Record, defaultSource string, opts ...MergeOption) error {
	cfg := mergeConfig{rank: RankSource}
	for _, o := range opts {
		o(&cfg)
	}

	if r.HasField(FieldTitle) && other.HasField(FieldTitle) &&
		r.HasField(FieldAuthor) && other.HasField(FieldAuthor) {
		titleSim := tokenSortSimilarity(r.Field(FieldTitle), other.Field(FieldTitle))
		authorSim := tokenSortSimilarity(r.Field(FieldAuthor), other.Field(FieldAuthor))
		if titleSim < incompatibleThreshold && authorSim < incompatibleThreshold {
			return &InvalidMergeError{A: r.ID, B: other.ID}
		}
	}

	for _, key := range other.FieldKeys() {
		theirVal := other.Field(key)
		if theirVal == "" {
			continue
		}
		theirProv, _ := other.FieldProvenance(key)
		theirSource := theirProv.Source
		if theirSource == "" {
			theirSource = defaultSource
		}

		if !r.HasField(key) {
			r.UpdateField(key, theirVal, theirSource, WithoutAppendEdit())
			continue
		}

		ourVal := r.Field(key)
		if ourVal == theirVal {
			continue
		}

		ourProv, _ := r.FieldProvenance(key)
		ourRank := cfg.rank(ourProv.Source)
		theirRank := cfg.rank(theirSource)

		switch {
		case theirRank > ourRank:
			r.UpdateField(key, theirVal, theirSource)
		case theirRank < ourRank:
			// keep ours
		default:
			// Tie: prefer the value closer to the longer candidate.
			longer := ourVal
			if len(theirVal) > len(ourVal) {
				longer = theirVal
			}
			if stringSimilarity(theirVal, longer) > stringSimilarity(ourVal, longer) {
				r.UpdateField(key, theirVal, theirSource)
			}
		}
	}

	for _, o := range other.Origins {
		r.AddOrigin(o)
	}

	// The merged record keeps the further-advanced status.
	if r.Status.Before(other.Status) {
		r.Status = other.Status
	}

	return nil
}
