package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Output receives a rendered exchange for every response.
type Output interface {
	Write(id string, contents string)
}

// DirOutput writes every exchange to its own file in a directory, it is
// meant for inspecting what upstream actually served when parsing breaks.
type DirOutput struct {
	directory string
}

// NewDirOutput creates `dir` (and its parents) if needed, previous dumps in
// the directory are overwritten as message ids restart at 1.
func NewDirOutput(dir string) (DirOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return DirOutput{}, fmt.Errorf("create dump directory: %w", err)
	}
	return DirOutput{directory: dir}, nil
}

func (o DirOutput) Write(id string, contents string) {
	path := filepath.Join(o.directory, id+".txt")
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http exchange", "id", id, "err", err)
	}
}
