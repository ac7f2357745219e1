package voicebank

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type lyricGroup map[string]struct{}

// DisjointLyricSet groups lyrics that sound the same, such as the romaji,
// hiragana and katakana spellings of one syllable. Every member of a group
// points at the same shared set.
type DisjointLyricSet struct {
	groups map[string]lyricGroup
}

func NewDisjointLyricSet() *DisjointLyricSet {
	return &DisjointLyricSet{groups: make(map[string]lyricGroup)}
}

// AddGroup adds members as one group. Members already in other groups pull
// those whole groups into the new one. Blank members are skipped.
func (d *DisjointLyricSet) AddGroup(members ...string) *DisjointLyricSet {
	merged := make(lyricGroup)
	for _, member := range members {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}
		merged[member] = struct{}{}
		if existing, ok := d.groups[member]; ok {
			for other := range existing {
				merged[other] = struct{}{}
			}
		}
	}
	for member := range merged {
		d.groups[member] = merged
	}
	return d
}

// Group returns the sorted members of member's group, including member
// itself, or nil when member belongs to no group.
func (d *DisjointLyricSet) Group(member string) []string {
	group, ok := d.groups[member]
	if !ok {
		return nil
	}
	members := maps.Keys(group)
	slices.Sort(members)
	return members
}

func (d *DisjointLyricSet) Len() int {
	return len(d.groups)
}
