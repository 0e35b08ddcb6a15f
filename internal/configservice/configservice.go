// Package configservice locates a jira-lite repository on disk and opens
// its settings. It sits on top of the config and yamlstore packages.
package configservice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jira-lite/internal/config"
	"jira-lite/internal/config/yamlstore"
)

// ErrNoRepository is returned when no .jira/config.yaml can be found.
var ErrNoRepository = errors.New("no jira-lite repository found")

// ResolvePaths finds the .jira directory to use.
// Discovery order: explicit path (the --path flag) > JL_DIR > walk up from
// the working directory, stopping at the git root, with a fallback to the
// main checkout when running inside a git worktree.
func ResolvePaths(explicit string) (config.Paths, error) {
	if explicit == "" {
		explicit = os.Getenv(config.EnvDir)
	}
	if explicit != "" {
		base, err := NormalizeBasePath(explicit)
		if err != nil {
			return config.Paths{}, err
		}
		return ResolveFromBase(base)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return config.Paths{}, fmt.Errorf("cannot get current directory: %w", err)
	}

	dir, found, err := findConfigUpward(cwd)
	if err != nil {
		return config.Paths{}, err
	}
	if !found {
		if root, wtErr := findGitWorktreeRoot(cwd); wtErr == nil && root != "" {
			if dir, found, err = findConfigUpward(root); err != nil {
				return config.Paths{}, err
			}
		}
	}
	if !found {
		return config.Paths{}, missingConfigErr(filepath.Join(cwd, config.DirName, config.FileName))
	}
	return config.PathsFor(dir), nil
}

// ResolveFromBase resolves Paths from a known .jira directory.
func ResolveFromBase(base string) (config.Paths, error) {
	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Paths{}, missingConfigErr(filepath.Join(base, config.FileName))
		}
		return config.Paths{}, fmt.Errorf("cannot access %s: %w", base, err)
	}
	if !info.IsDir() {
		return config.Paths{}, fmt.Errorf("%s is not a directory", base)
	}

	paths := config.PathsFor(base)
	if _, err := os.Stat(paths.ConfigFile); err != nil {
		return config.Paths{}, missingConfigErr(paths.ConfigFile)
	}
	return paths, nil
}

// NormalizeBasePath makes path absolute and appends ".jira" unless the
// path already names a .jira directory.
func NormalizeBasePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if filepath.Base(abs) != config.DirName {
		abs = filepath.Join(abs, config.DirName)
	}
	return abs, nil
}

// Open loads the settings file for paths and layers defaults and
// environment overrides on top, in memory.
func Open(paths config.Paths) (*yamlstore.YAMLStore, error) {
	store, err := yamlstore.New(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	config.FillDefaults(store)
	config.ApplyEnvOverrides(store)
	return store, nil
}

// findConfigUpward walks from start toward the filesystem root looking for
// .jira/config.yaml and stops at the git root if start is inside a repo.
func findConfigUpward(start string) (string, bool, error) {
	gitRoot, _ := FindGitRoot(start)

	dir := start
	for {
		configDir := filepath.Join(dir, config.DirName)
		info, err := os.Stat(filepath.Join(configDir, config.FileName))
		if err == nil && !info.IsDir() {
			return configDir, true, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("checking config: %w", err)
		}

		if gitRoot != "" && dir == gitRoot {
			return "", false, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// FindGitRoot returns the nearest ancestor of startDir containing .git,
// or "" outside a git checkout. A .git file (worktree) counts.
func FindGitRoot(startDir string) (string, error) {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// findGitWorktreeRoot returns the main checkout when startDir is inside a
// linked worktree, or "" otherwise.
func findGitWorktreeRoot(startDir string) (string, error) {
	gitRoot, err := FindGitRoot(startDir)
	if err != nil || gitRoot == "" {
		return "", err
	}

	gitPath := filepath.Join(gitRoot, ".git")
	info, err := os.Stat(gitPath)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", nil
	}

	// A worktree's .git file reads "gitdir: <main>/.git/worktrees/<name>".
	content, err := os.ReadFile(gitPath)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(content))
	if !strings.HasPrefix(line, "gitdir: ") {
		return "", nil
	}
	gitDir := strings.TrimPrefix(line, "gitdir: ")
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(gitRoot, gitDir)
	}
	gitDir = filepath.Clean(gitDir)

	if raw, err := os.ReadFile(filepath.Join(gitDir, "commondir")); err == nil {
		common := strings.TrimSpace(string(raw))
		if !filepath.IsAbs(common) {
			common = filepath.Join(gitDir, common)
		}
		return filepath.Dir(filepath.Clean(common)), nil
	}

	sep := string(filepath.Separator)
	if strings.Contains(gitDir, sep+"worktrees"+sep) {
		return filepath.Dir(filepath.Dir(filepath.Dir(gitDir))), nil
	}
	return "", nil
}

func missingConfigErr(path string) error {
	return fmt.Errorf("%w: config not found at %s (run `jl init`)", ErrNoRepository, path)
}
