// Package market applies ship market changes to the two KDY market Lua
// library files. Edits are textual block replacements; a rewritten file
// is only written back when it still compiles as Lua.
package market
