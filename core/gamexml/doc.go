// Package gamexml wraps the XML element trees the game stores its unit,
// template and hardpoint definitions in.
//
// It provides record lookup by Name attribute across the element names
// the installed data actually uses, and tolerant field access: field
// names are resolved through an explicit ordered list of casing variants
// (verbatim, Title_Case, UPPER) because the stock files are not
// consistent about it.
package gamexml
