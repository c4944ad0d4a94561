// Package resolve implements the Handle Resolver: mapping opaque handles
// (a document id, a filename, or a title) to canonical document ids using
// exact lookups backed by regex handle classification and a fuzzy-match
// fallback over headers already scoped by tenant.
package resolve

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"ragcore/internal/ragtypes"
	"ragcore/internal/vectorstore"
)

const fuzzyThreshold = 0.7
const maxPerStep = 3

var hexIDRe = regexp.MustCompile(`^[0-9a-f]{32}$`)
var dotExtRe = regexp.MustCompile(`\.[a-zA-Z0-9]{2,4}$`)

// Resolver resolves handles against the header table.
type Resolver struct {
	store vectorstore.Store
}

// New returns a Resolver backed by store.
func New(store vectorstore.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps each handle to up to 3 candidate document ids per step and
// returns the deduplicated union across all handles, in first-seen order.
func (r *Resolver) Resolve(ctx context.Context, handles []string, tenantID string) ([]string, error) {
	headers, err := r.store.ListHeaders(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	for _, handle := range handles {
		for _, id := range resolveOne(handle, headers) {
			add(id)
		}
	}
	return out, nil
}

func resolveOne(handle string, headers []ragtypes.Document) []string {
	h := strings.TrimSpace(handle)
	lower := strings.ToLower(h)

	if hexIDRe.MatchString(lower) {
		for _, d := range headers {
			if strings.ToLower(d.DocumentID) == lower {
				return []string{d.DocumentID}
			}
		}
		return nil
	}

	if dotExtRe.MatchString(h) {
		return matchField(h, headers, func(d ragtypes.Document) string { return d.SourceFilename })
	}

	ids := matchField(h, headers, func(d ragtypes.Document) string { return d.Title })
	if len(ids) < maxPerStep {
		for _, id := range matchField(h, headers, func(d ragtypes.Document) string { return d.SourceFilename }) {
			if len(ids) >= maxPerStep {
				break
			}
			if !contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

type scoredMatch struct {
	id    string
	score float64
}

// matchField tries an exact match on field(d) first; if nothing exact
// matches, falls back to fuzzy (Dice bigram coefficient, threshold 0.7),
// ranked best match first.
func matchField(handle string, headers []ragtypes.Document, field func(ragtypes.Document) string) []string {
	lower := strings.ToLower(handle)

	var exact []string
	for _, d := range headers {
		if strings.ToLower(field(d)) == lower {
			exact = append(exact, d.DocumentID)
			if len(exact) >= maxPerStep {
				return exact
			}
		}
	}
	if len(exact) > 0 {
		return exact
	}

	var cand []scoredMatch
	for _, d := range headers {
		s := diceCoefficient(lower, strings.ToLower(field(d)))
		if s >= fuzzyThreshold {
			cand = append(cand, scoredMatch{d.DocumentID, s})
		}
	}
	sort.Slice(cand, func(i, j int) bool { return cand[i].score > cand[j].score })

	var out []string
	for _, c := range cand {
		out = append(out, c.id)
		if len(out) >= maxPerStep {
			break
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
