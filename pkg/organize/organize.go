// Package organize files loose example scripts into category folders based
// on their filename prefix.
package organize

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Rule maps a filename prefix to a category folder.
type Rule struct {
	Prefix string `yaml:"prefix" json:"prefix"`
	Folder string `yaml:"folder" json:"folder"`
}

// DefaultRules is the prefix table for the example corpus. Aliases such as
// Strings and Lib merge into their canonical folder.
var DefaultRules = []Rule{
	{"String", "String"},
	{"Strings", "String"},
	{"Array", "Array"},
	{"Advanced", "Advanced"},
	{"BuiltIn", "BuiltIn"},
	{"Control", "Control"},
	{"File", "File"},
	{"GUI", "GUI"},
	{"OOP", "OOP"},
	{"StdLib", "StdLib"},
	{"Hotkey", "Hotkey"},
	{"Hotstring", "Hotstring"},
	{"Window", "Window"},
	{"Library", "Library"},
	{"Lib", "Library"},
	{"Misc", "Misc"},
	{"Process", "Process"},
	{"Directive", "Directive"},
	{"Env", "Env"},
	{"GitHub", "GitHub"},
	{"Module", "Module"},
	{"Xypha", "Xypha"},
	{"Pattern", "Pattern"},
	{"Syntax", "Syntax"},
	{"Registry", "Registry"},
	{"Failed", "Failed"},
	{"Utility", "Utility"},
	{"DateTime", "DateTime"},
	{"v2", "v2"},
	{"Integrity", "Integrity"},
	{"Screen", "Screen"},
	{"Sound", "Sound"},
	{"Flow", "Flow"},
	{"Hook", "Hook"},
	{"MetaFunction", "MetaFunction"},
	{"DataStructures", "DataStructures"},
	{"Functions", "Functions"},
	{"Iterator", "Iterator"},
	{"Maths", "Maths"},
	{"Sync", "Sync"},

	// Control commands
	{"ControlFocus", "Control"},
	{"ControlGetFocus", "Control"},
	{"ControlGetPos", "Control"},
	{"ControlGetText", "Control"},
	{"ControlMove", "Control"},
	{"ControlSend", "Control"},
	{"ControlSetText", "Control"},
	{"ControlGetHwnd", "Control"},

	// Directory and drive commands
	{"DirCopy", "File"},
	{"DirCreate", "File"},
	{"DirMove", "File"},
	{"DirDelete", "File"},
	{"DirExist", "File"},
	{"DriveEject", "File"},
	{"DriveGet", "File"},
	{"DriveInfo", "File"},
	{"DriveList", "File"},
	{"DriveSet", "File"},

	{"Base64", "Misc"},
	{"ChildProcess", "Process"},
	{"Crypt", "Misc"},
	{"Descolada", "Misc"},
	{"JSON", "Misc"},
	{"Local", "Misc"},
}

// TargetFolder returns the folder of the first rule whose prefix is followed
// by "_" or "-" in name.
func TargetFolder(name string, rules []Rule) (string, bool) {
	for _, r := range rules {
		if strings.HasPrefix(name, r.Prefix+"_") || strings.HasPrefix(name, r.Prefix+"-") {
			return r.Folder, true
		}
	}
	return "", false
}

// Move is a file placed (or to be placed) into a folder.
type Move struct {
	File   string `json:"file"`
	Folder string `json:"folder"`
}

// Failure is a file that could not be moved.
type Failure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Stats records what Organize did, in processing order.
type Stats struct {
	Scanned         int       `json:"scanned"`
	Moved           []Move    `json:"moved"`
	AlreadyInFolder []string  `json:"already_in_folder"`
	NoMatch         []string  `json:"no_match"`
	Errors          []Failure `json:"errors"`
	CreatedDirs     []string  `json:"created_dirs"`
}

// FolderCount is the number of files moved into one folder.
type FolderCount struct {
	Folder string
	Files  int
}

// ByFolder counts moved files per folder, sorted by folder name.
func (s Stats) ByFolder() []FolderCount {
	counts := make(map[string]int)
	for _, m := range s.Moved {
		counts[m.Folder]++
	}
	out := make([]FolderCount, 0, len(counts))
	for f, n := range counts {
		out = append(out, FolderCount{f, n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folder < out[j].Folder })
	return out
}

// Options configures Organize. The zero value is a dry run with DefaultRules.
type Options struct {
	Rules   []Rule
	Execute bool
	Logger  *slog.Logger
}

// Organize moves the .ahk files directly under root into the folder chosen
// by their prefix. Files whose target already exists are left in place.
// Without Execute nothing on disk changes.
func Organize(root string, opts Options) (Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read %s: %w", root, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".ahk") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	st := Stats{Scanned: len(names)}
	created := make(map[string]bool)
	for _, name := range names {
		folder, ok := TargetFolder(name, rules)
		if !ok {
			st.NoMatch = append(st.NoMatch, name)
			continue
		}
		dir := filepath.Join(root, folder)
		dst := filepath.Join(dir, name)
		if _, err := os.Stat(dst); err == nil {
			st.AlreadyInFolder = append(st.AlreadyInFolder, name)
			continue
		}

		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) && !created[folder] {
			created[folder] = true
			st.CreatedDirs = append(st.CreatedDirs, folder)
			if opts.Execute {
				if err := os.MkdirAll(dir, 0755); err != nil {
					st.Errors = append(st.Errors, Failure{name, err.Error()})
					logger.Warn("failed to create folder", "folder", folder, "error", err)
					continue
				}
			}
		}

		if opts.Execute {
			if err := os.Rename(filepath.Join(root, name), dst); err != nil {
				st.Errors = append(st.Errors, Failure{name, err.Error()})
				logger.Warn("failed to move file", "file", name, "error", err)
				continue
			}
		}
		logger.Debug("organized", "file", name, "folder", folder, "execute", opts.Execute)
		st.Moved = append(st.Moved, Move{name, folder})
	}
	return st, nil
}

const shownUnmatched = 20

// RenderSummary formats the end-of-run summary.
func RenderSummary(st Stats) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "\n%s\nSUMMARY\n%s\n", rule, rule)

	fmt.Fprintf(&b, "\nFiles moved: %d\n", len(st.Moved))
	for _, fc := range st.ByFolder() {
		fmt.Fprintf(&b, "  %s/: %d files\n", fc.Folder, fc.Files)
	}
	fmt.Fprintf(&b, "\nFiles already in target folder: %d\n", len(st.AlreadyInFolder))
	fmt.Fprintf(&b, "\nFiles with no matching prefix: %d\n", len(st.NoMatch))
	if len(st.NoMatch) > 0 {
		fmt.Fprintf(&b, "  Examples (first %d):\n", shownUnmatched)
		for i, f := range st.NoMatch {
			if i == shownUnmatched {
				fmt.Fprintf(&b, "    ... and %d more\n", len(st.NoMatch)-shownUnmatched)
				break
			}
			fmt.Fprintf(&b, "    - %s\n", f)
		}
	}
	if len(st.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors: %d\n", len(st.Errors))
		for _, e := range st.Errors {
			fmt.Fprintf(&b, "  - %s: %s\n", e.File, e.Error)
		}
	}
	return b.String()
}
