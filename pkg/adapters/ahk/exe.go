// Package ahk locates the AutoHotkey v2 interpreter and runs external
// tools (the interpreter, linters, fixers) with timeouts.
package ahk

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// EnvPath names the environment variable that overrides executable discovery.
const EnvPath = "AHK_PATH"

// DefaultPaths are the standard Windows install locations, probed in order.
var DefaultPaths = []string{
	`C:\Program Files\AutoHotkey\v2\AutoHotkey64.exe`,
	`C:\Program Files\AutoHotkey\v2\AutoHotkey32.exe`,
	`C:\Program Files\AutoHotkey\AutoHotkey64.exe`,
	`C:\Program Files\AutoHotkey\AutoHotkey32.exe`,
}

// searchNames are tried on PATH after the fixed locations.
var searchNames = []string{"AutoHotkey64.exe", "AutoHotkey64", "AutoHotkey"}

// Locator finds the interpreter. The zero value uses the process environment
// and file system.
type Locator struct {
	Getenv   func(string) string
	Exists   func(string) bool
	LookPath func(string) (string, error)
}

// FindExecutable locates the interpreter using the process environment.
func FindExecutable() (string, error) {
	return Locator{}.Find()
}

// Find returns the first existing candidate: $AHK_PATH, then DefaultPaths,
// then PATH lookup. It wraps core.ErrToolNotFound when nothing is found.
func (l Locator) Find() (string, error) {
	getenv, exists, look := l.Getenv, l.Exists, l.LookPath
	if getenv == nil {
		getenv = os.Getenv
	}
	if exists == nil {
		exists = fileExists
	}
	if look == nil {
		look = exec.LookPath
	}

	if p := getenv(EnvPath); p != "" && exists(p) {
		return p, nil
	}
	for _, p := range DefaultPaths {
		if exists(p) {
			return p, nil
		}
	}
	for _, name := range searchNames {
		if p, err := look(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("AutoHotkey v2 not found. Set %s environment variable or install to default location: %w",
		EnvPath, core.ErrToolNotFound)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
