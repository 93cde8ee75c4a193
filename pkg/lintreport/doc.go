// Package lintreport summarizes linter output for the example corpus and
// turns editor diagnostics into chat prompts.
package lintreport
