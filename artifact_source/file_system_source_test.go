package artifact_source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("{}\n"), 0644))
	}
}

func TestFileSystemSource_DiscoverArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"song_data/A/B/C/TRABCEI128F424C983.json",
		"song_data/A/A/B/TRAABJL12903CDCF1A.json",
		"song_data/A/A/TRAAAAW128F429D538.json",
		"song_data/A/A/B/notes.txt",
		"log_data/2018/11/2018-11-12-events.json",
		"log_data/2018/11/2018-11-13-events.json",
	)

	tests := []struct {
		name              string
		glob              string
		extensions        []string
		expectedArtifacts []string
	}{
		{
			name: "song data",
			glob: "song_data/*/*/*/*",
			expectedArtifacts: []string{
				"song_data/A/A/B/TRAABJL12903CDCF1A.json",
				"song_data/A/A/B/notes.txt",
				"song_data/A/B/C/TRABCEI128F424C983.json",
			},
		},
		{
			name:       "song data with extension filter",
			glob:       "song_data/*/*/*/*",
			extensions: []string{".json"},
			expectedArtifacts: []string{
				"song_data/A/A/B/TRAABJL12903CDCF1A.json",
				"song_data/A/B/C/TRABCEI128F424C983.json",
			},
		},
		{
			name: "log data",
			glob: "log_data/*/*/*.json",
			expectedArtifacts: []string{
				"log_data/2018/11/2018-11-12-events.json",
				"log_data/2018/11/2018-11-13-events.json",
			},
		},
		{
			name: "missing prefix matches nothing",
			glob: "other_data/*.json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, err := NewPattern(tt.glob, tt.extensions)
			require.NoError(t, err)

			s := NewFileSystemSource(root)
			got, err := s.DiscoverArtifacts(context.Background(), pattern)
			require.NoError(t, err)

			var names []string
			for _, a := range got {
				names = append(names, a.Name)
				assert.Equal(t, FileSystemSourceIdentifier, a.SourceType)
				assert.Equal(t, filepath.Join(root, filepath.FromSlash(a.Name)), a.OriginalName)
			}
			assert.Equal(t, tt.expectedArtifacts, names)
		})
	}
}

func TestFileSystemSource_MissingRoot(t *testing.T) {
	pattern, err := NewPattern("song_data/*.json", nil)
	require.NoError(t, err)

	s := NewFileSystemSource(filepath.Join(t.TempDir(), "missing"))
	_, err = s.DiscoverArtifacts(context.Background(), pattern)
	assert.Error(t, err)
}

func TestFileSystemSource_DownloadArtifact(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "log_data/a.json")
	pattern, err := NewPattern("log_data/*.json", nil)
	require.NoError(t, err)

	s := NewFileSystemSource(root)
	found, err := s.DiscoverArtifacts(context.Background(), pattern)
	require.NoError(t, err)
	require.Len(t, found, 1)

	downloaded, err := s.DownloadArtifact(context.Background(), found[0])
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "log_data", "a.json"), downloaded.LocalName)
	assert.Empty(t, found[0].LocalName)
}

func TestRelativeKey(t *testing.T) {
	assert.Equal(t, "song_data/a.json", relativeKey("input", "input/song_data/a.json"))
	assert.Equal(t, "song_data/a.json", relativeKey("", "song_data/a.json"))
	assert.Equal(t, "input/song_data", joinKey("input/", "/song_data"))
	assert.Equal(t, "", joinKey("", ""))
}

func TestLocalPath(t *testing.T) {
	tmpDir := t.TempDir()
	tests := []struct {
		name    string
		artName string
		want    string
		wantErr bool
	}{
		{name: "nested", artName: "song_data/A/a.json", want: filepath.Join(tmpDir, "song_data", "A", "a.json")},
		{name: "escapes", artName: "song_data/../../../x.json", wantErr: true},
		{name: "parent", artName: "..", wantErr: true},
		{name: "root", artName: ".", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := localPath(tmpDir, tt.artName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteLocalFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "log_data", "2018", "a.json")
	require.NoError(t, writeLocalFile(dest, strings.NewReader("{}\n")))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(got))

	err = writeLocalFile(filepath.Join(t.TempDir(), "b.json"), failingReader{})
	assert.ErrorContains(t, err, "connection reset")
}
