package dataset

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
)

// DefaultExtensions are the snippet extensions collected when none are given.
var DefaultExtensions = []string{".ahk"}

// CollectOptions configures CollectSnippets.
type CollectOptions struct {
	Extensions []string
	Logger     *slog.Logger
}

// CollectSnippets walks root in sorted order and returns one record per
// non-empty snippet. Unreadable files are logged and skipped.
func CollectSnippets(ctx context.Context, root string, opts CollectOptions) ([]core.Record, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := fs.GlobExt(root, exts...)
	if err != nil {
		return nil, err
	}

	records := make([]core.Record, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := fs.ReadText(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			logger.Warn("skipping unreadable snippet", "path", rel, "error", err)
			continue
		}
		rec, ok := snippetRecord(rel, text)
		if !ok {
			logger.Debug("skipping empty snippet", "path", rel)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func snippetRecord(rel, text string) (core.Record, bool) {
	snippet := strings.TrimSpace(fs.ToLF(text))
	if snippet == "" {
		return core.Record{}, false
	}

	filename := path.Base(rel)
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	category := snippetCategory(rel)

	return core.Record{
		Prompt:   BuildPrompt(category, stem, rel),
		Response: snippet + "\n",
		Metadata: core.Metadata{
			"source_path": rel,
			"category":    category,
			"filename":    filename,
			"line_count":  len(fs.SplitLines(snippet)),
			"record_type": core.RecordTypeSnippet,
		},
	}, true
}

// snippetCategory is the first path component of a nested file. Files at the
// root of the tree have no category.
func snippetCategory(rel string) string {
	if i := strings.Index(rel, "/"); i >= 0 {
		return rel[:i]
	}
	return ""
}
