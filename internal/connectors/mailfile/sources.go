package mailfile

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-mbox"
	"go.uber.org/zap"

	"todoreader/internal"
)

// EMLSource reads every *.eml file below Root, one batch per directory.
type EMLSource struct {
	Root   string
	Logger *zap.Logger
}

func (s EMLSource) Read(ctx context.Context) ([]internal.SourceBatch, error) {
	logger := orNop(s.Logger)
	var out []internal.SourceBatch
	index := map[string]int{}

	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".eml") {
			return nil
		}

		dir := filepath.Dir(path)
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rec, err := ParseMessage(raw, internal.SourceEML, folderName(s.Root, dir))
		if err != nil {
			logger.Warn("skipping unreadable message", zap.String("path", path), zap.Error(err))
			return nil
		}

		i, ok := index[dir]
		if !ok {
			i = len(out)
			index[dir] = i
			out = append(out, internal.SourceBatch{Source: internal.SourceEML, Folder: relFolder(s.Root, dir)})
		}
		out[i].Records = append(out[i].Records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MboxSource reads one mbox file, or every mbox file below a directory as
// laid out by readpst.
type MboxSource struct {
	Path   string
	Logger *zap.Logger
}

func (s MboxSource) Read(ctx context.Context) ([]internal.SourceBatch, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		batch, err := s.readFile(ctx, s.Path, filepath.Dir(s.Path))
		if err != nil {
			return nil, err
		}
		return []internal.SourceBatch{batch}, nil
	}

	var out []internal.SourceBatch
	err = filepath.WalkDir(s.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMboxFile(path) {
			return nil
		}
		batch, err := s.readFile(ctx, path, s.Path)
		if err != nil {
			return err
		}
		out = append(out, batch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s MboxSource) readFile(ctx context.Context, path, root string) (internal.SourceBatch, error) {
	logger := orNop(s.Logger)
	f, err := os.Open(path)
	if err != nil {
		return internal.SourceBatch{}, err
	}
	defer f.Close()

	folder := mboxFolder(root, path)
	batch := internal.SourceBatch{Source: internal.SourceMbox, Folder: folder}
	reader := mbox.NewReader(f)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return internal.SourceBatch{}, err
		}
		msg, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return internal.SourceBatch{}, err
		}
		raw, err := io.ReadAll(msg)
		if err != nil {
			return internal.SourceBatch{}, err
		}
		rec, err := ParseMessage(raw, internal.SourceMbox, filepath.Base(folder))
		if err != nil {
			logger.Warn("skipping unreadable message", zap.String("path", path), zap.Int("message", n), zap.Error(err))
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

func isMboxFile(path string) bool {
	base := filepath.Base(path)
	return base == "mbox" || strings.EqualFold(filepath.Ext(base), ".mbox")
}

// mboxFolder names a folder after the file, or after its directory when the
// file is literally called "mbox".
func mboxFolder(root, path string) string {
	if filepath.Base(path) == "mbox" {
		return relFolder(root, filepath.Dir(path))
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return name
	}
	return filepath.ToSlash(filepath.Join(rel, name))
}

func relFolder(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return filepath.Base(dir)
	}
	return filepath.ToSlash(rel)
}

func folderName(root, dir string) string {
	return filepath.Base(filepath.FromSlash(relFolder(root, dir)))
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
