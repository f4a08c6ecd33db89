package models

import (
	"fmt"
	"strings"
)

// Tag labels a user's area of interest.
type Tag string

// DefaultTags is used when no tag list is configured.
var DefaultTags = []string{
	"WebDevelopment",
	"MobileDevelopment",
	"MachineLearning",
	"DeepLearning",
	"FullStackDevelopment",
	"CoreBlockchainDevelopment",
}

// TagSet is the closed enumeration of tags accepted at registration.
type TagSet struct {
	order []Tag
	index map[Tag]struct{}
}

// NewTagSet builds a set from raw names, keeping the first occurrence order.
// Blank names are skipped.
func NewTagSet(names []string) TagSet {
	s := TagSet{index: make(map[Tag]struct{}, len(names))}
	for _, n := range names {
		t := Tag(strings.TrimSpace(n))
		if t == "" {
			continue
		}
		if _, ok := s.index[t]; ok {
			continue
		}
		s.index[t] = struct{}{}
		s.order = append(s.order, t)
	}
	return s
}

// Parse returns the tag for raw, or an error if it is not in the set.
func (s TagSet) Parse(raw string) (Tag, error) {
	t := Tag(raw)
	if _, ok := s.index[t]; !ok {
		return "", fmt.Errorf("unknown tag %q", raw)
	}
	return t, nil
}

// List returns the tags in configured order.
func (s TagSet) List() []Tag {
	out := make([]Tag, len(s.order))
	copy(out, s.order)
	return out
}

func (s TagSet) Len() int { return len(s.order) }
