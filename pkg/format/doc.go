// Package format checks and normalizes the formatting surface of AutoHotkey
// v2 sources.
//
// The checker reports indentation, line ending, comment, delimiter and
// block structure problems per file. The fixer reindents files flagged by a
// checker report. The hygiene pass covers encoding, header directives and
// whitespace, and can rewrite files with safe text fixes.
package format
