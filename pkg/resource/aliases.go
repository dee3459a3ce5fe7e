// SPDX-License-Identifier: MPL-2.0

package resource

import "slices"

// AliasSet is a deduplicated set of alternative keys. Membership ignores
// order; iteration follows first insertion.
type AliasSet struct {
	values []string
}

// NewAliasSet returns a set holding the given aliases.
func NewAliasSet(aliases ...string) *AliasSet {
	s := &AliasSet{}
	for _, a := range aliases {
		s.Add(a)
	}
	return s
}

// Add inserts an alias and reports whether it was new.
func (s *AliasSet) Add(alias string) bool {
	if s.Has(alias) {
		return false
	}
	s.values = append(s.values, alias)
	return true
}

// Has reports whether alias is in the set.
func (s *AliasSet) Has(alias string) bool {
	return s != nil && slices.Contains(s.values, alias)
}

// Len returns the number of aliases.
func (s *AliasSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Values returns the aliases in insertion order.
func (s *AliasSet) Values() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.values)
}
