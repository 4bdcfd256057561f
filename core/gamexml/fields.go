package gamexml

import (
	"unicode"

	"modkit/core/utils"

	"github.com/beevik/etree"
)

// nameVariants returns the ordered list of element names tried when
// resolving a field: verbatim, Title_Cased, then UPPER. Installed game
// data uses inconsistent casing across files, hence the explicit list
// rather than a case-insensitive scan.
func nameVariants(name string) []string {
	variants := []string{name}
	for _, v := range []string{titleCase(name), upperCase(name)} {
		seen := false
		for _, existing := range variants {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			variants = append(variants, v)
		}
	}
	return variants
}

// titleCase uppercases the first letter of every underscore- or
// punctuation-separated word and lowercases the rest, so
// "shield_points" becomes "Shield_Points".
func titleCase(s string) string {
	out := []rune(s)
	prevLetter := false
	for i, r := range out {
		if unicode.IsLetter(r) {
			if prevLetter {
				out[i] = unicode.ToLower(r)
			} else {
				out[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(out)
}

func upperCase(s string) string {
	out := []rune(s)
	for i, r := range out {
		out[i] = unicode.ToUpper(r)
	}
	return string(out)
}

// Value resolves a numeric field on a record, trying each name variant in
// order and returning the first one whose text parses as a number.
// Missing or non-numeric fields report false, never an error.
func Value(el *etree.Element, name string) (float64, bool) {
	for _, variant := range nameVariants(name) {
		child := el.SelectElement(variant)
		if child == nil {
			continue
		}
		if v, ok := utils.ParseNumber(child.Text()); ok {
			return v, true
		}
	}
	return 0, false
}

// SetValue writes a field on a record, updating in place when any name
// variant resolves and otherwise creating a new child element under the
// name as given. A set following a failed lookup therefore always lands.
func SetValue(el *etree.Element, name string, value any) {
	text := utils.FormatValue(value)
	for _, variant := range nameVariants(name) {
		if child := el.SelectElement(variant); child != nil {
			child.SetText(text)
			return
		}
	}
	child := el.CreateElement(name)
	child.SetText(text)
}

// HasField reports whether the record carries a child element under the
// exact given name. Unlike Value it does not require numeric content.
func HasField(el *etree.Element, name string) bool {
	return el.SelectElement(name) != nil
}

// RemoveFields deletes every child element under the exact given name and
// returns how many were removed.
func RemoveFields(el *etree.Element, name string) int {
	removed := 0
	for {
		child := el.SelectElement(name)
		if child == nil {
			return removed
		}
		el.RemoveChild(child)
		removed++
	}
}

// AppendField adds a new child element with the given text, even when
// siblings of the same name already exist. Used for repeatable tags.
func AppendField(el *etree.Element, name, text string) {
	child := el.CreateElement(name)
	child.SetText(text)
}
