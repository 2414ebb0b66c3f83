package inventory

import "strings"

// TagSet is an insertion-ordered, case-sensitive set of trimmed labels.
type TagSet struct {
	tags []string
}

func NewTagSet(tags ...string) *TagSet {
	s := &TagSet{}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add trims tag and keeps it unless it is empty or already present. It
// reports whether the set changed.
func (s *TagSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || s.Has(tag) {
		return false
	}
	s.tags = append(s.tags, tag)
	return true
}

func (s *TagSet) Remove(tag string) bool {
	for i, t := range s.tags {
		if t == tag {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return true
		}
	}
	return false
}

func (s *TagSet) Has(tag string) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s *TagSet) Len() int {
	return len(s.tags)
}

// Values returns a copy of the tags in insertion order.
func (s *TagSet) Values() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// ParseTagList splits a comma separated list into a tag set.
func ParseTagList(s string) *TagSet {
	return NewTagSet(strings.Split(s, ",")...)
}
