package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstent/walktime-go/internal/models"
)

const wantHeader = `"Date","Time","Route","Distance (km)","Duration (min)","Speed (km/h)","Terrain Factor"`

func sampleWalk() models.WalkRecord {
	return models.WalkRecord{
		ID:       1704096000000,
		Date:     "2024-01-01",
		Time:     "08:00:00",
		Route:    "A → B",
		Distance: 1.23,
		Duration: 15,
		Speed:    4.9,
		Terrain:  1.0,
	}
}

func TestWriteCSV_SingleWalk(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.WalkRecord{sampleWalk()}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, wantHeader, lines[0])
	assert.Equal(t, `"2024-01-01","08:00:00","A → B","1.23","15","4.9","1"`, lines[1])
}

func TestWriteCSV_Formatting(t *testing.T) {
	walk := sampleWalk()
	walk.Distance = 2.0
	walk.Duration = 27.6
	walk.Speed = 4.3478
	walk.Terrain = 0.8
	walk.Route = `Walk "3"`

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.WalkRecord{walk}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, `"2024-01-01","08:00:00","Walk ""3""","2.00","28","4.3","0.8"`, lines[1])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, wantHeader+"\n", buf.String())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "walking_data_2024-03-09.csv", Filename(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)))
}

func TestSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := Snapshot(dir, nil, now)
	assert.ErrorIs(t, err, ErrNoData)

	path, err := Snapshot(dir, []models.WalkRecord{sampleWalk()}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "walking_data_2024-01-02.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), wantHeader))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
