package mdconv

import "strings"

// LabelSet holds the ordered target labels per category. An empty list
// disables matching for that category.
type LabelSet struct {
	Video  []string
	Lesson []string
}

// MatchHeading classifies a heading against the configured labels.
// Video is checked first: a heading matching both categories is video, which
// mirrors the selection priority downstream.
func MatchHeading(heading string, labels LabelSet) Category {
	h := Normalize(heading)
	if h == "" {
		return CategoryNone
	}
	if matchAny(h, labels.Video) {
		return CategoryVideo
	}
	if matchAny(h, labels.Lesson) {
		return CategoryLesson
	}
	return CategoryNone
}

func matchAny(heading string, labels []string) bool {
	for _, raw := range labels {
		label := Normalize(raw)
		if label == "" {
			continue
		}
		if labelMatches(heading, label) {
			return true
		}
	}
	return false
}

// labelMatches compares a normalized heading against one normalized label:
// equality, substring either direction, or token subset ("videó szöveg"
// matches "Videó szöveg – vázlat" because both tokens occur in the heading).
func labelMatches(heading, label string) bool {
	if heading == label ||
		strings.Contains(heading, label) ||
		strings.Contains(label, heading) {
		return true
	}

	for _, tok := range strings.Fields(label) {
		if !strings.Contains(heading, tok) {
			return false
		}
	}
	return true
}
