// Package backup maintains one pristine snapshot per managed game file.
//
// A snapshot is captured the first time the tool touches a file and is
// never overwritten afterwards. Every apply pass restores the managed
// files from these snapshots before reapplying changes, which is what
// makes repeated runs idempotent, and the reset commands use the same
// snapshots to recover original values field by field.
package backup
