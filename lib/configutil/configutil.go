package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalPath returns the path of the local override file for a config file,
// ex. `config.json5` -> `config.local.json5`.
func LocalPath(name string) string {
	prefixname, ext := splitExt(filepath.Base(name))
	return filepath.Join(
		filepath.Dir(name),
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
}

// decodeFile unmarshals `name` on top of `out`, fields the file leaves out
// keep their current value. found is false for a missing or empty file.
func decodeFile[T any](name string, out *T) (found bool, err error) {
	contents, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return true, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// readInto decodes `name` and then its local override into `out`.
func readInto[T any](name string, out *T) error {
	foundDefault, err := decodeFile(name, out)
	if err != nil {
		return err
	}

	localFilepath := LocalPath(name)
	foundLocal, err := decodeFile(localFilepath, out)
	if err != nil {
		return err
	}
	if foundLocal {
		slog.Info("merging config with local overrides", "local", localFilepath)
	}

	if !foundDefault && !foundLocal {
		return os.ErrNotExist
	}
	return nil
}

// reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
// a value written in a file always wins, zero values included.
func ReadConfig[T any](name string) (T, error) {
	var out T
	err := readInto(name, &out)
	return out, err
}

// ReadConfigOr is ReadConfig decoded on top of `defaults`, fields the files
// leave out keep their default value. A missing file is not an error.
// `defaults` is copied shallowly, maps and slices in it should not be shared
// with anything else.
func ReadConfigOr[T any](name string, defaults T) (T, error) {
	out := defaults
	err := readInto(name, &out)
	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return defaults, err
	}
	return out, nil
}

// Override replaces the fields of `base` with every non-zero field of
// `overrides`, for layering flags on top of a config file.
func Override[T any](base, overrides T) (T, error) {
	err := mergo.Merge(&base, overrides, mergo.WithOverride)
	return base, err
}

// FindUp walks from `start` up to the filesystem root and returns the path of
// the first `name` (or its local override) it sees. os.ErrNotExist is
// returned when there is none.
func FindUp(start, name string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(current, name)
		for _, path := range []string{candidate, LocalPath(candidate)} {
			_, err := os.Stat(path)
			if err == nil {
				return candidate, nil
			}
			if !os.IsNotExist(err) {
				return "", err
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}
