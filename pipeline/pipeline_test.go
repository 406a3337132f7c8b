package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/turbot/songplay-etl/config"
	"github.com/turbot/songplay-etl/context_values"
	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/events"
	"github.com/turbot/songplay-etl/id_generator"
	"github.com/turbot/songplay-etl/observable"
	"github.com/turbot/songplay-etl/tables"
	"github.com/turbot/songplay-etl/types"
)

const (
	fixYouSong = `{"num_songs": 1, "artist_id": "ARCOLDPLAY1187B9A", "artist_latitude": null, "artist_longitude": null,
 "artist_location": "London", "artist_name": "Coldplay", "song_id": "SOFIXYOU12A8C13B2B", "title": "Fix You",
 "duration": 296.0, "year": 2005}`
	yellowSong = `{"num_songs": 1, "artist_id": "ARCOLDPLAY1187B9A", "artist_latitude": 51.5, "artist_longitude": -0.12,
 "artist_location": "London", "artist_name": "Coldplay", "song_id": "SOYELLOW12A8C13B2C", "title": "Yellow",
 "duration": 266.77, "year": 2000}`

	// 2018-11-11 is a Sunday
	fixYouPlay  = `{"artist":"Coldplay","auth":"Logged In","firstName":"Lily","gender":"F","itemInSession":0,"lastName":"Koch","length":296.0,"level":"paid","location":"London","method":"PUT","page":"NextSong","registration":1.541048010796E12,"sessionId":818,"song":"Fix You","status":200,"ts":1541903636796,"userAgent":"Mozilla\/5.0","userId":"15"}`
	unknownPlay = `{"artist":"Nobody","auth":"Logged In","firstName":"Ava","gender":"F","itemInSession":1,"lastName":"Robinson","length":100.5,"level":"free","location":"Nowhere","method":"PUT","page":"NextSong","registration":1.540921624796E12,"sessionId":442,"song":"Silence","status":200,"ts":1541990217796,"userAgent":"curl","userId":50}`
	homeVisit   = `{"artist":null,"auth":"Logged In","firstName":"Lily","gender":"F","itemInSession":2,"lastName":"Koch","length":null,"level":"paid","location":"London","method":"GET","page":"Home","registration":1.541048010796E12,"sessionId":818,"song":null,"status":200,"ts":1541903700000,"userAgent":"Mozilla\/5.0","userId":"15"}`
	logout      = `{"artist":null,"auth":"Logged In","firstName":"Lily","gender":"F","itemInSession":3,"lastName":"Koch","length":null,"level":"paid","location":"London","method":"PUT","page":"Logout","registration":1.541048010796E12,"sessionId":818,"song":null,"status":307,"ts":1541903800000,"userAgent":"Mozilla\/5.0","userId":"15"}`
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func writeFixtures(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, root, "song_data/A/B/C/TRFIXYOU.json", fixYouSong)
	writeFile(t, root, "song_data/A/B/D/TRYELLOW.json", yellowSong)
	// too shallow for the catalog pattern
	writeFile(t, root, "song_data/A/TRSHALLOW.json", "not json")
	writeFile(t, root, "log_data/2018/11/2018-11-11-events.json", strings.Join([]string{fixYouPlay, homeVisit, logout}, "\n"))
	writeFile(t, root, "log_data/2018/11/2018-11-12-events.json", unknownPlay+"\n")
	return root
}

func testConfig(t *testing.T, input string) (*config.Config, string) {
	output := t.TempDir()
	cfg := config.Default()
	cfg.InputRoot = input
	cfg.OutputRoot = output
	cfg.Parallelism = 2
	return cfg, output
}

// recorder is an observer collecting events
type recorder struct {
	mut    sync.Mutex
	events []events.Event
}

func (r *recorder) Notify(_ context.Context, e events.Event) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) stages() []string {
	var res []string
	for _, e := range r.events {
		if s, ok := e.(*events.StageCompleted); ok {
			res = append(res, s.Stage)
		}
	}
	return res
}

func readJSONL[T any](t *testing.T, files []string) []T {
	var res []T
	for _, f := range files {
		file, err := os.Open(f)
		require.NoError(t, err)
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var row T
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
			res = append(res, row)
		}
		require.NoError(t, file.Close())
	}
	return res
}

func TestPipeline_Run(t *testing.T) {
	input := writeFixtures(t)
	cfg, output := testConfig(t, input)
	rec := &recorder{}

	p, err := New(cfg,
		WithOutputFormat("jsonl"),
		WithExecutor(dataset.SerialExecutor{}),
		WithIdGenerator(id_generator.NewCounter()),
		WithObservers(rec, NewLoggingObserver(nil)))
	require.NoError(t, err)

	ctx := context_values.WithExecutionId(context.Background(), "run-1")
	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.ExecutionId)

	assert.Equal(t, map[string]int{
		tables.TableSongs:     2,
		tables.TableArtists:   2,
		tables.TableUsers:     3,
		tables.TableTime:      2,
		tables.TableSongplays: 1,
	}, res.RowCounts)

	// default partitioning
	assert.Equal(t, []string{
		filepath.Join(output, "songs", "year=2000", "artist_id=ARCOLDPLAY1187B9A", "part-run-1-0.jsonl"),
		filepath.Join(output, "songs", "year=2005", "artist_id=ARCOLDPLAY1187B9A", "part-run-1-1.jsonl"),
	}, res.Files[tables.TableSongs])
	assert.Equal(t, []string{filepath.Join(output, "artists", "part-run-1-0.jsonl")}, res.Files[tables.TableArtists])
	assert.Equal(t, []string{filepath.Join(output, "time", "year=2018", "month=11", "part-run-1-0.jsonl")}, res.Files[tables.TableTime])
	assert.Equal(t, 6, res.FilesWritten())

	users := readJSONL[tables.User](t, res.Files[tables.TableUsers])
	var userIds []string
	for _, u := range users {
		userIds = append(userIds, u.UserId)
	}
	sort.Strings(userIds)
	assert.Equal(t, []string{"15", "15", "50"}, userIds)

	timeRows := readJSONL[tables.Time](t, res.Files[tables.TableTime])
	sort.Slice(timeRows, func(i, j int) bool { return timeRows[i].Timestamp < timeRows[j].Timestamp })
	require.Len(t, timeRows, 2)
	assert.Equal(t, tables.Time{Id: timeRows[0].Id, Timestamp: 1541903636000, Hour: 2, Day: 11, Week: 45, Month: 11, Year: 2018, Weekday: 1}, timeRows[0])
	assert.NotEqual(t, timeRows[0].Id, timeRows[1].Id)

	plays := readJSONL[tables.Songplay](t, res.Files[tables.TableSongplays])
	require.Len(t, plays, 1)
	assert.Equal(t, "SOFIXYOU12A8C13B2B", *plays[0].SongId)
	assert.Equal(t, "ARCOLDPLAY1187B9A", *plays[0].ArtistId)
	assert.Equal(t, "15", plays[0].UserId)
	assert.Equal(t, int64(818), plays[0].SessionId)
	assert.Equal(t, int64(1541903636000), plays[0].Timestamp)

	// the catalog is read once and shared by both phases
	assert.Equal(t, []string{
		"read_catalog", "decode_catalog", "project_songs", "project_artists",
		"read_activity", "decode_activity", "filter_users", "project_users", "decompose", "join",
	}, rec.stages())

	_, ok := rec.events[0].(*events.Started)
	assert.True(t, ok)
	completed, ok := rec.events[len(rec.events)-1].(*events.Completed)
	require.True(t, ok)
	assert.NoError(t, completed.Err)
	assert.Equal(t, 6, completed.FilesWritten)

	for _, stage := range []string{"read_catalog", "join", "write_songplays"} {
		_, ok := res.Timing[stage]
		assert.True(t, ok, stage)
	}
}

func TestPipeline_LeftJoinParquet(t *testing.T) {
	input := writeFixtures(t)
	cfg, output := testConfig(t, input)
	cfg.Join.Type = "left"
	cfg.Tables = []config.TableConfig{{Name: tables.TableSongplays, PartitionBy: []string{"level"}}}

	p, err := New(cfg, WithPhases(PhaseLogs))
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ExecutionId)
	assert.Equal(t, 2, res.RowCounts[tables.TableSongplays])
	_, ok := res.RowCounts[tables.TableSongs]
	assert.False(t, ok)

	files := res.Files[tables.TableSongplays]
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(output, "songplays", "level=free", "part-"+res.ExecutionId+"-0.parquet"), files[0])

	fr, err := local.NewLocalFileReader(files[0])
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(tables.Songplay), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	rows := make([]tables.Songplay, pr.GetNumRows())
	require.NoError(t, pr.Read(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "50", rows[0].UserId)
	assert.Nil(t, rows[0].SongId)
	assert.Nil(t, rows[0].ArtistId)
}

func TestPipeline_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		check func(t *testing.T, err error)
	}{
		{
			name:  "no catalog files",
			files: map[string]string{"log_data/2018/11/a.json": fixYouPlay},
			check: func(t *testing.T, err error) {
				var readErr *types.ReadError
				require.True(t, errors.As(err, &readErr))
				assert.ErrorIs(t, err, types.ErrNoArtifacts)
			},
		},
		{
			name: "malformed activity line",
			files: map[string]string{
				"song_data/A/B/C/a.json":  fixYouSong,
				"log_data/2018/11/a.json": fixYouPlay + "\n{\"userId\": \n",
			},
			check: func(t *testing.T, err error) {
				var parseErr *types.ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, 2, parseErr.Line)
			},
		},
		{
			name: "non numeric timestamp",
			files: map[string]string{
				"song_data/A/B/C/a.json":  fixYouSong,
				"log_data/2018/11/a.json": strings.Replace(fixYouPlay, `"ts":1541903636796`, `"ts":"yesterday"`, 1),
			},
			check: func(t *testing.T, err error) {
				var transformErr *types.TransformError
				require.True(t, errors.As(err, &transformErr))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, input, name, content)
			}
			cfg, _ := testConfig(t, input)
			rec := &recorder{}
			p, err := New(cfg, WithObservers(rec))
			require.NoError(t, err)

			res, err := p.Run(context.Background())
			require.Error(t, err)
			tt.check(t, err)
			require.NotNil(t, res)

			completed, ok := rec.events[len(rec.events)-1].(*events.Completed)
			require.True(t, ok)
			assert.Error(t, completed.Err)
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	_, err := New(cfg)
	assert.Error(t, err, "input_root is required")

	cfg.InputRoot = t.TempDir()
	_, err = New(cfg, WithOutputFormat("csv"))
	assert.Error(t, err)

	_, err = New(nil)
	assert.Error(t, err)
}

func TestPipeline_ObserverFailureDoesNotFailRun(t *testing.T) {
	input := writeFixtures(t)
	cfg, _ := testConfig(t, input)
	failing := observable.ObserverFunc(func(context.Context, events.Event) error {
		return errors.New("observer down")
	})
	p, err := New(cfg, WithObservers(failing), WithPhases(PhaseSongs))
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.NoError(t, err)
}
