// Package review implements the script review workflow: a catalog of the
// scripts directory, persisted review decisions and lint quality, content
// editing with backups, and hooks to the external linter, fixer and
// interpreter. A separate grader curates generated samples.
//
// The HTTP surface lives in the http subpackage.
package review
