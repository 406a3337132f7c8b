package artifact_source

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/turbot/songplay-etl/types"
)

const FileSystemSourceIdentifier = "file_system"

// FileSystemSource is a [Source] which reads artifacts from a local directory
type FileSystemSource struct {
	Root string
}

func NewFileSystemSource(root string) *FileSystemSource {
	return &FileSystemSource{Root: root}
}

func (s *FileSystemSource) Identifier() string {
	return FileSystemSourceIdentifier
}

func (s *FileSystemSource) DiscoverArtifacts(ctx context.Context, pattern *Pattern) ([]*types.ArtifactInfo, error) {
	if _, err := os.Stat(s.Root); err != nil {
		return nil, err
	}

	walkRoot := filepath.Join(s.Root, filepath.FromSlash(pattern.Prefix()))
	var res []*types.ArtifactInfo
	err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// a missing static prefix is not an error, it just matches nothing
			if errors.Is(err, fs.ErrNotExist) && path == walkRoot {
				return filepath.SkipDir
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !pattern.Match(rel) {
			return nil
		}

		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}
		info := types.NewArtifactInfo(rel,
			types.WithOriginalName(path),
			types.WithSource(FileSystemSourceIdentifier, s.Root),
			types.WithSize(size))
		res = append(res, info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	slog.Debug("FileSystemSource discovered artifacts", "root", s.Root, "pattern", pattern.String(), "count", len(res))
	return res, nil
}

// DownloadArtifact implements [Source]
// local artifacts are read in place
func (s *FileSystemSource) DownloadArtifact(_ context.Context, info *types.ArtifactInfo) (*types.ArtifactInfo, error) {
	return info.Downloaded(info.OriginalName), nil
}

func (s *FileSystemSource) Close() error {
	return nil
}
