package netlist

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Exclusion rules applied by InterestingComponents. Patterns match the
// whole reference or value.
var (
	excludedReferences = []*regexp.Regexp{
		regexp.MustCompile(`^TP[0-9]+$`), // test points
	}
	excludedValues = []*regexp.Regexp{
		regexp.MustCompile(`^MOUNTHOLE$`),
		regexp.MustCompile(`^SCOPETEST$`),
		regexp.MustCompile(`^MOUNT_HOLE$`),
		regexp.MustCompile(`^SOLDER_BRIDGE.*$`),
	}
	dnpMarkers = []string{"dnp", "dnl", "dnf", "do not place", "do not fit", "do not load"}
)

// Excluded reports whether c is kept out of the BOM.
func Excluded(c *Component) bool {
	if c.HasProperty("exclude_from_bom") || c.HasProperty("dnp") {
		return true
	}
	for _, re := range excludedReferences {
		if re.MatchString(c.Ref) {
			return true
		}
	}
	for _, re := range excludedValues {
		if re.MatchString(c.Value) {
			return true
		}
	}
	if isDNPMarker(c.Value) {
		return true
	}
	for _, f := range c.Fields {
		if isDNPMarker(f.Value) {
			return true
		}
	}
	return false
}

func isDNPMarker(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, m := range dnpMarkers {
		if v == m {
			return true
		}
	}
	return false
}

// InterestingComponents returns the components that belong in the BOM,
// sorted by reference in natural order.
func (n *Netlist) InterestingComponents() []*Component {
	var ret []*Component
	for _, c := range n.Components {
		if !Excluded(c) {
			ret = append(ret, c)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return RefLess(ret[i].Ref, ret[j].Ref)
	})
	return ret
}

// ComponentFieldUnion returns the union of the components' field names in
// first-seen order.
func (n *Netlist) ComponentFieldUnion(components []*Component) []string {
	var names []string
	seen := make(map[string]bool)
	for _, c := range components {
		for _, name := range c.FieldNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// LibPartFieldUnion returns the union of field names declared by library
// parts, in first-seen order.
func (n *Netlist) LibPartFieldUnion() []string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range n.LibParts {
		for _, f := range p.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}
	return names
}

// FieldCandidates returns the field names a user can put in a BOM: the
// component and library-part unions without "Reference", sorted.
func (n *Netlist) FieldCandidates(components []*Component) []string {
	set := make(map[string]bool)
	for _, name := range n.ComponentFieldUnion(components) {
		set[name] = true
	}
	for _, name := range n.LibPartFieldUnion() {
		set[name] = true
	}
	delete(set, FieldReference)

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equivalent reports whether two components share a BOM line: same value,
// same footprint and same reference prefix.
func Equivalent(a, b *Component) bool {
	return a.Value == b.Value &&
		a.Footprint == b.Footprint &&
		RefPrefix(a.Ref) == RefPrefix(b.Ref)
}

// GroupComponents partitions components into groups of equivalent parts.
// Members keep their input order; groups are ordered by their first member.
func (n *Netlist) GroupComponents(components []*Component) []Group {
	var groups []Group
	for _, c := range components {
		found := false
		for i, g := range groups {
			if Equivalent(g[0], c) {
				groups[i] = append(g, c)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, Group{c})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return RefLess(groups[i][0].Ref, groups[j][0].Ref)
	})
	return groups
}

// GroupField returns the first non-empty value of name among the group's
// members, then the first member's library part value, else "".
func (n *Netlist) GroupField(group Group, name string) string {
	for _, c := range group {
		if v := c.Field(name, false); v != "" {
			return v
		}
	}
	if len(group) == 0 {
		return ""
	}
	if p := group[0].LibPart(); p != nil {
		return p.Field(name)
	}
	return ""
}

// RefPrefix strips the trailing digits of a reference ("R12" -> "R").
func RefPrefix(ref string) string {
	return strings.TrimRight(ref, "0123456789")
}

// RefLess orders references by prefix, then numerically by suffix, so that
// R2 sorts before R10.
func RefLess(a, b string) bool {
	pa, pb := RefPrefix(a), RefPrefix(b)
	if pa != pb {
		return pa < pb
	}
	na, errA := strconv.Atoi(a[len(pa):])
	nb, errB := strconv.Atoi(b[len(pb):])
	if errA != nil || errB != nil || na == nb {
		return a < b
	}
	return na < nb
}
