package catalog

import "strings"

// Classification decides how a flavor category is presented for selection.
type Classification int

const (
	// ClassPlain keeps the category as-is.
	ClassPlain Classification = iota
	// ClassFreePaidSplit splits the category into a free pool (one selection
	// at no charge) and a paid pool (one selection at the flavor's extra
	// price). Used for topping-style categories.
	ClassFreePaidSplit
)

// Classifier maps flavor categories to their selection classification based on
// a configurable keyword list matched against the category slug and name.
type Classifier struct {
	keywords []string
}

// DefaultSplitKeywords are the category keywords that trigger a free/paid
// split when no explicit configuration is provided.
var DefaultSplitKeywords = []string{"topping", "toppings"}

// NewClassifier creates a Classifier with the given split keywords. An empty
// list falls back to DefaultSplitKeywords.
func NewClassifier(keywords []string) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultSplitKeywords
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Classifier{keywords: lowered}
}

// Classify returns the classification for a flavor category. A category whose
// slug equals a keyword, or whose name contains one, is split into free and
// paid pools.
func (c *Classifier) Classify(fc FlavorCategory) Classification {
	slug := strings.ToLower(fc.Slug)
	name := strings.ToLower(fc.Name)
	for _, kw := range c.keywords {
		if slug == kw || strings.Contains(name, kw) {
			return ClassFreePaidSplit
		}
	}
	return ClassPlain
}
