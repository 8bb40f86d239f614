package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BaSui01/agentline/types"
)

// ReadFile returns the contents of path as a string.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", types.WrapFailed("read file", err).WithCode(types.ErrToolFailed)
	}
	return string(data), nil
}

// WriteFile writes content to path, creating parent directories as
// needed and truncating any existing file.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.WrapFailed("write file", err).WithCode(types.ErrToolFailed)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return types.WrapFailed("write file", err).WithCode(types.ErrToolFailed)
	}
	return nil
}

// AppendFile appends content to path, creating the file if it does not
// exist.
func AppendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return types.WrapFailed("append file", err).WithCode(types.ErrToolFailed)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return types.WrapFailed("append file", err).WithCode(types.ErrToolFailed)
	}
	return nil
}

// FileExists reports whether path names an existing file or directory.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateDir creates the directory at path along with any missing
// parents.
func CreateDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return types.WrapFailed("create dir", err).WithCode(types.ErrToolFailed)
	}
	return nil
}

// DeleteFile removes the file at path. Deleting a missing file is not an
// error.
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return types.WrapFailed("delete file", err).WithCode(types.ErrToolFailed)
	}
	return nil
}

// ListDir returns the full paths of the entries directly under path.
func ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, types.WrapFailed("list dir", err).WithCode(types.ErrToolFailed)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, filepath.Join(path, entry.Name()))
	}
	return out, nil
}

// FindFiles walks the tree under root and returns files whose name ends
// with pattern. A leading "*" in the pattern is ignored, so "*.go" and
// ".go" match the same files.
func FindFiles(root, pattern string) ([]string, error) {
	suffix := strings.TrimPrefix(pattern, "*")
	var results []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			results = append(results, path)
		}
		return nil
	})
	if err != nil {
		return nil, types.WrapFailed("find files", err).WithCode(types.ErrToolFailed)
	}
	return results, nil
}
