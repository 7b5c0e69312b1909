// Package classifier maps platform content labels, tags and free text to one
// of a fixed set of content categories.
package classifier

import "creator_scout/internal/domain"

// Classify returns the category of a creator. Categories are tried in
// priority order (iGaming, IRL, Music, Creative, Sports, Education, Gaming);
// for each one the current label, label history, tags and description are
// checked in turn and the first match wins. A non-empty label that matches
// nothing is Gaming; everything else is Variety.
//
// Classify is deterministic and total.
func Classify(currentLabel string, history []string, tags []string, description string) domain.Category {
	label := fold(currentLabel)
	past := foldAll(history)
	folded := foldAll(tags)
	text := fold(description)

	for _, r := range rules {
		if r.matchesLabel(label) || r.matchesAny(past) || r.matchesAny(folded) || r.matchesText(text) {
			return r.category
		}
	}

	if label != "" || len(past) > 0 {
		return domain.CategoryGaming
	}
	return domain.CategoryVariety
}
