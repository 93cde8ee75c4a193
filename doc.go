// Package ahkcurate is the composition root for the AutoHotkey v2 dataset
// curation tools.
//
// It wires the review service (script catalog, status store, external
// linter and fixer) with the storage adapters under pkg/adapters. The batch
// tools live in their own packages:
//
//   - dataset: builds train/val/test JSONL splits from raw snippets.
//   - format: formatting checks, reindent fixes and the hygiene pass.
//   - normalize: regex replacement pairs and whole-file fixups.
//   - audit: header, sample, #Include and interpreter validation.
//   - lintreport: linter report analysis and problem export.
//   - organize: moves flat example files into category folders.
//   - rules: the curation rules and quick validator.
//
// Usage:
//
//	svc, err := ahkcurate.New("./data/Scripts",
//		ahkcurate.WithAdapter(ahkcurate.AdapterJSON),
//		ahkcurate.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	views, err := svc.List(ctx, core.Filter{Category: "Gui"})
package ahkcurate
