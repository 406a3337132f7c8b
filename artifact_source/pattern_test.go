package artifact_source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		name       string
		glob       string
		extensions []string
		path       string
		wantPrefix string
		want       bool
	}{
		{
			name:       "song data depth",
			glob:       "song_data/*/*/*/*.json",
			path:       "song_data/A/B/C/TRABCEI128F424C983.json",
			wantPrefix: "song_data",
			want:       true,
		},
		{
			name:       "song data too shallow",
			glob:       "song_data/*/*/*/*.json",
			path:       "song_data/A/B/TRABCEI128F424C983.json",
			wantPrefix: "song_data",
		},
		{
			name:       "star does not cross segments",
			glob:       "log_data/*/*.json",
			path:       "log_data/2018/11/2018-11-12-events.json",
			wantPrefix: "log_data",
		},
		{
			name:       "log data",
			glob:       "log_data/*/*/*.json",
			path:       "log_data/2018/11/2018-11-12-events.json",
			wantPrefix: "log_data",
			want:       true,
		},
		{
			name:       "double star",
			glob:       "log_data/**/*.json",
			path:       "log_data/2018/11/2018-11-12-events.json",
			wantPrefix: "log_data",
			want:       true,
		},
		{
			name:       "case sensitive",
			glob:       "song_data/*.json",
			path:       "Song_Data/a.json",
			wantPrefix: "song_data",
		},
		{
			name:       "extension filter rejects",
			glob:       "data/*",
			extensions: []string{".json"},
			path:       "data/readme.md",
			wantPrefix: "data",
		},
		{
			name:       "extension filter accepts gzip",
			glob:       "data/*",
			extensions: []string{".json", ".gz"},
			path:       "data/events.json.gz",
			wantPrefix: "data",
			want:       true,
		},
		{
			name:       "parent segment rejected",
			glob:       "song_data/*/*.json",
			path:       "song_data/../x.json",
			wantPrefix: "song_data",
		},
		{
			name:       "parent segment rejected by double star",
			glob:       "song_data/**/*.json",
			path:       "song_data/a/../../../x.json",
			wantPrefix: "song_data",
		},
		{
			name:       "no static prefix",
			glob:       "*/*.json",
			path:       "a/b.json",
			wantPrefix: "",
			want:       true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPattern(tt.glob, tt.extensions)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrefix, p.Prefix())
			assert.Equal(t, tt.want, p.Match(tt.path))
		})
	}
}

func TestNewPattern_Invalid(t *testing.T) {
	_, err := NewPattern("song_data/[", nil)
	assert.Error(t, err)

	_, err = NewPattern("  ", nil)
	assert.Error(t, err)
}
