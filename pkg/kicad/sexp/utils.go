// Package sexp provides navigation helpers shared by the KiCad netlist and
// schematic readers.
package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/sexp/kicadsexp"
)

// Property is a key/value pair such as (property "Value" "10k" ...) or
// (field (name "MPN") "RC0603").
type Property struct {
	Key   string
	Value string
}

// Items returns the elements of a list node, or nil for atoms.
func Items(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if list, ok := s.(*kicadsexp.List); ok {
		return list.Items()
	}
	return nil
}

// FindNode searches for a direct child list whose first symbol is key.
// Example: FindNode(sexp, "value") finds (value "10k") in a component.
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range Items(s) {
		if name, err := GetNodeName(item); err == nil && !item.IsLeaf() && name == key {
			return item, true
		}
	}
	return nil, false
}

// FindAllNodes finds all direct child lists with the given key
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range Items(s) {
		if item.IsLeaf() {
			continue
		}
		if name, err := GetNodeName(item); err == nil && name == key {
			results = append(results, item)
		}
	}
	return results
}

// GetString extracts the atom at the given index in a list.
// Index 0 is the key, 1 is first value, etc.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	items := Items(s)
	if items == nil {
		return "", fmt.Errorf("expected list, got leaf")
	}
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}
	if sym, ok := items[index].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at index %d, got list", index)
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}
	return val, nil
}

// GetNodeName returns the first symbol of a list (the node type/name)
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil node")
	}
	if sym, ok := s.Head().(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at head of list")
}

// ChildValue returns the first value of the child node named key, e.g.
// ChildValue(comp, "ref") on (comp (ref "R1") ...) returns "R1".
func ChildValue(s kicadsexp.Sexp, key string) (string, bool) {
	node, ok := FindNode(s, key)
	if !ok {
		return "", false
	}
	val, err := GetString(node, 1)
	if err != nil {
		return "", true
	}
	return val, true
}

// GetYesNo reads flags written as (in_bom yes) or (dnp no). A flag node
// without a value counts as set.
func GetYesNo(s kicadsexp.Sexp, key string) (value bool, present bool) {
	node, ok := FindNode(s, key)
	if !ok {
		return false, false
	}
	val, err := GetString(node, 1)
	if err != nil {
		return true, true
	}
	return val == "yes" || val == "true", true
}

// GetProperty extracts a property from a (property "key" "value" ...) node
func GetProperty(s kicadsexp.Sexp) (Property, error) {
	key, err := GetString(s, 1)
	if err != nil {
		return Property{}, fmt.Errorf("failed to parse property key: %w", err)
	}
	// Value can be missing
	value, _ := GetString(s, 2)
	return Property{Key: key, Value: value}, nil
}

// GetField extracts a netlist field, either (field (name "MPN") "value") or
// the bare (field (name "MPN")) form used for empty values.
func GetField(s kicadsexp.Sexp) (Property, error) {
	name, ok := ChildValue(s, "name")
	if !ok {
		return Property{}, fmt.Errorf("field without name")
	}
	prop := Property{Key: name}
	for _, item := range Items(s)[1:] {
		if sym, ok := item.(kicadsexp.Symbol); ok {
			prop.Value = string(sym)
			break
		}
	}
	return prop, nil
}
