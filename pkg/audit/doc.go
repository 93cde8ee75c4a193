// Package audit validates a corpus of AutoHotkey v2 examples: header
// directives, training-sample conventions, #Include references and, when
// the interpreter is available, script syntax.
package audit
