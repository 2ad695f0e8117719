package builder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// Scan builds the file tree for a file or directory. base is the parent
// directory the tree is rooted in, for opening content later. Files and
// directories whose name starts with a dot are skipped.
func Scan(path string, includeMTime bool) (models.FileTree, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return models.FileTree{}, "", err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return models.FileTree{}, "", err
	}
	name := filepath.Base(abs)
	base := filepath.Dir(abs)

	if !st.IsDir() {
		entry := models.FileEntry{Length: st.Size()}
		if includeMTime {
			entry.MTime = st.ModTime()
		}
		return models.NewFileTree(name, true, []models.FileEntry{entry}), base, nil
	}

	var entries []models.FileEntry
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != abs && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entry := models.FileEntry{
			Path:   strings.Split(filepath.ToSlash(rel), "/"),
			Length: info.Size(),
		}
		if includeMTime {
			entry.MTime = info.ModTime()
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return models.FileTree{}, "", err
	}
	if len(entries) == 0 {
		return models.FileTree{}, "", fmt.Errorf("no files in %s", path)
	}
	return models.NewFileTree(name, false, entries), base, nil
}
