package builder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/pcbgen/internal/shared"
	"github.com/OpenTraceLab/pcbgen/internal/store"
	"github.com/OpenTraceLab/pcbgen/pkg/design"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/pcb"
)

const powerSupply = `board "power-supply-test"
resistor r1 value "10kohm" at (100, 100)
resistor r2 value "10kohm" at (100, 110)
capacitor c1 value "100uF" voltage "25V" at (110, 105, 90)
net vin = r1.1, c1.1
net vout = r1.2, r2.1
net gnd = r2.2, c1.2
create r1, r2, c1
`

const dangling = `board "broken"
resistor r1 value "1k"
resistor r2 value "1k"
net n = r1.1, r2.1
create r1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type memRecorder struct {
	builds []*store.Build
}

func (m *memRecorder) Create(_ context.Context, b *store.Build) error {
	m.builds = append(m.builds, b)
	return nil
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "power.board", powerSupply)
	out := filepath.Join(dir, "out")
	rec := &memRecorder{}

	b := New(Options{OutDir: out, Recorder: rec})
	res, err := b.Build(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, res.Artifacts, 3)
	for _, a := range res.Artifacts {
		assert.FileExists(t, a.Path)
	}
	assert.Equal(t, filepath.Join(out, "power-supply-test.kicad_pcb"), res.Artifacts[0].Path)

	board, err := pcb.ParseFile(res.Artifacts[0].Path)
	require.NoError(t, err)
	assert.Len(t, board.Footprints, 3)
	assert.Equal(t, []string{"vin", "vout", "gnd"}, board.GetAllNetNames())

	require.Len(t, rec.builds, 1)
	assert.Equal(t, "power-supply-test", rec.builds[0].Board)
	assert.Equal(t, 3, rec.builds[0].Components)
	assert.Equal(t, 3, rec.builds[0].Nets)
	assert.Len(t, rec.builds[0].Artifacts, 3)
}

func TestBuildPlotFormat(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "power.board", powerSupply)

	b := New(Options{OutDir: dir, Formats: []Format{FormatSVG}})
	res, err := b.Build(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)

	data, err := os.ReadFile(res.Artifacts[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestBuildFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "broken.board", dangling)
	out := filepath.Join(dir, "out")
	rec := &memRecorder{}

	_, err := New(Options{OutDir: out, Recorder: rec}).Build(context.Background(), src)
	assert.ErrorIs(t, err, design.ErrDanglingNetMember)
	assert.NoDirExists(t, out)
	assert.Empty(t, rec.builds)
}

func TestBuildCancelled(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "power.board", powerSupply)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{OutDir: dir}).Build(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildAll(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "power.board", powerSupply)
	bad := writeFile(t, dir, "broken.board", dangling)

	results, err := New(Options{OutDir: dir, Formats: []Format{FormatNet}}).
		BuildAll(context.Background(), []string{bad, good})
	require.Error(t, err)
	assert.ErrorIs(t, err, design.ErrDanglingNetMember)
	require.Len(t, results, 1)
	assert.Equal(t, good, results[0].Source)
}

func TestBuildRecordsHistory(t *testing.T) {
	db, err := shared.OpenDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()
	repo := store.NewBuildRepository(db)

	dir := t.TempDir()
	src := writeFile(t, dir, "power.board", powerSupply)
	b := New(Options{OutDir: dir, Formats: []Format{FormatJSON}, Recorder: repo})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := b.Build(ctx, src)
		require.NoError(t, err)
	}
	_, err = b.Build(ctx, writeFile(t, dir, "broken.board", dangling))
	require.Error(t, err)

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	latest, err := repo.Latest(ctx, "power-supply-test")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "power-supply-test.json")}, latest.Artifacts)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      []string
		want    []Format
		wantErr bool
	}{
		{in: []string{"kicad_pcb,net"}, want: []Format{FormatKiCadPCB, FormatNet}},
		{in: []string{".JSON", "png", "json"}, want: []Format{FormatJSON, FormatPNG}},
		{in: []string{""}, want: nil},
		{in: []string{"gerber"}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormats(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat, "%v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "power-supply-test", FileName("power-supply-test"))
	assert.Equal(t, "my-board-v2", FileName("my board/v2"))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.board", powerSupply)
	b := writeFile(t, dir, filepath.Join("nested", "deep", "b.yaml"), "board: b\n")
	writeFile(t, dir, filepath.Join("nested", "notes.txt"), "ignored")

	t.Run("directory", func(t *testing.T) {
		files, err := Expand([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, files)
	})

	t.Run("pattern", func(t *testing.T) {
		files, err := Expand([]string{filepath.Join(dir, "**", "*.yaml")})
		require.NoError(t, err)
		assert.Equal(t, []string{b}, files)
	})

	t.Run("duplicates", func(t *testing.T) {
		files, err := Expand([]string{a, filepath.Join(dir, "*.board")})
		require.NoError(t, err)
		assert.Equal(t, []string{a}, files)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := Expand([]string{filepath.Join(dir, "**", "*.kicad_pcb")})
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := Expand([]string{filepath.Join(dir, "[")})
		assert.Error(t, err)
	})
}

func TestBuildLogsBoardAndFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "power.board", powerSupply)

	var buf bytes.Buffer
	logger := shared.NewLogger(&buf)
	b := New(Options{OutDir: dir, Formats: []Format{FormatJSON}, Logger: logger})

	_, err := b.Build(context.Background(), src)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "board built")
	assert.Contains(t, out, "board=power-supply-test")
	assert.Contains(t, out, "power.board")
}
