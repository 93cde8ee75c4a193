// Package dataset builds fine-tuning datasets from AutoHotkey snippets and
// reference CSV exports.
//
// The pipeline is a linear batch transform:
//
//	records := CollectSnippets(root)          // one record per non-empty snippet
//	records += LoadReferenceCSV(csv)...       // optional reference entries
//	unique  := Dedupe(records)                // first occurrence per response hash
//	train, val, test := Split(unique, v, t, seed)
//	WriteJSONL(...)                           // prompt/response/metadata lines
//
// Build wires the steps together and reports a Summary.
package dataset
