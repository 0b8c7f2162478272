package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/pcbgen/internal/config"
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

const duplicateRef = `board "dup"

resistor r1 value "1k"
resistor r2 value "1k" ref "R1"

create r1, r2
`

// workspace writes the definitions into a temp dir and points the history
// database there.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv(config.EnvDatabase, filepath.Join(dir, "history.db"))
	t.Setenv(config.EnvConfig, "")
	return dir
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Reset flags to prevent accumulation between tests
	verbose = false
	configPath = ""
	outDir = ""
	formatNames = nil
	watchMode = false
	noHistory = false
	sortNets = false
	plotOut = ""
	plotTitle = ""
	historyBoard = ""
	historyLimit = 20
	historyLatest = false
	historyClear = false

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done

	return buf.String(), err
}

func TestCheckE2E(t *testing.T) {
	dir := workspace(t, map[string]string{
		"power.board": powerSupply,
		"dup.board":   duplicateRef,
	})

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "valid definition",
			args:        []string{"check", filepath.Join(dir, "power.board")},
			wantContain: []string{"power-supply-test: 3 components, 3 nets"},
		},
		{
			name: "verbose lists nets",
			args: []string{"check", "-v", filepath.Join(dir, "power.board")},
			wantContain: []string{
				"C1",
				"100uF",
				"net vout",
			},
		},
		{
			name:        "duplicate reference",
			args:        []string{"check", filepath.Join(dir, "dup.board")},
			wantErr:     true,
			wantContain: []string{"✗", "dup.board"},
		},
		{
			name:    "missing file",
			args:    []string{"check", filepath.Join(dir, "nope.board")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error but got none\nOutput: %s", output)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestBuildE2E(t *testing.T) {
	dir := workspace(t, map[string]string{"power.board": powerSupply})
	out := filepath.Join(dir, "build")

	output, err := execute(t, "build", filepath.Join(dir, "power.board"), "-o", out, "-f", "kicad_pcb,net,json")
	if err != nil {
		t.Fatalf("build failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "power-supply-test") {
		t.Errorf("Output missing board name\nGot:\n%s", output)
	}
	for _, ext := range []string{"kicad_pcb", "net", "json"} {
		if _, err := os.Stat(filepath.Join(out, "power-supply-test."+ext)); err != nil {
			t.Errorf("missing artifact: %v", err)
		}
	}

	pcbFile := filepath.Join(out, "power-supply-test.kicad_pcb")

	t.Run("nets", func(t *testing.T) {
		output, err := execute(t, "nets", pcbFile, "--sort")
		if err != nil {
			t.Fatalf("nets failed: %v", err)
		}
		for _, want := range []string{"3 footprints", "gnd", "vin", "vout"} {
			if !strings.Contains(output, want) {
				t.Errorf("Output missing %q\nGot:\n%s", want, output)
			}
		}
	})

	t.Run("net details", func(t *testing.T) {
		output, err := execute(t, "nets", pcbFile, "vin")
		if err != nil {
			t.Fatalf("nets failed: %v", err)
		}
		for _, want := range []string{"Net: vin", "R1.1", "C1.1"} {
			if !strings.Contains(output, want) {
				t.Errorf("Output missing %q\nGot:\n%s", want, output)
			}
		}
	})

	t.Run("unknown net", func(t *testing.T) {
		if _, err := execute(t, "nets", pcbFile, "vcc"); err == nil {
			t.Error("Expected error but got none")
		}
	})

	t.Run("inspect", func(t *testing.T) {
		output, err := execute(t, "inspect", pcbFile)
		if err != nil {
			t.Fatalf("inspect failed: %v", err)
		}
		for _, want := range []string{"Root: kicad_pcb", "footprint", "net"} {
			if !strings.Contains(output, want) {
				t.Errorf("Output missing %q\nGot:\n%s", want, output)
			}
		}
	})

	t.Run("history", func(t *testing.T) {
		output, err := execute(t, "history", "--board", "power-supply-test")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output, "power.board") {
			t.Errorf("history does not list the build\nGot:\n%s", output)
		}
	})

	t.Run("history latest", func(t *testing.T) {
		output, err := execute(t, "history", "--latest")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		for _, want := range []string{"power-supply-test built", "Components: 3", "power-supply-test.kicad_pcb"} {
			if !strings.Contains(output, want) {
				t.Errorf("Output missing %q\nGot:\n%s", want, output)
			}
		}
	})

	t.Run("history total", func(t *testing.T) {
		output, err := execute(t, "history", "-n", "1")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output, "showing 1 of 1 builds") {
			t.Errorf("Output missing total\nGot:\n%s", output)
		}
	})

	t.Run("history clear", func(t *testing.T) {
		if _, err := execute(t, "history", "--clear"); err != nil {
			t.Fatalf("history --clear failed: %v", err)
		}
		output, err := execute(t, "history")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output, "no builds recorded") {
			t.Errorf("history not cleared\nGot:\n%s", output)
		}
	})
}

func TestBuildNoHistoryE2E(t *testing.T) {
	dir := workspace(t, map[string]string{"power.board": powerSupply})

	if _, err := execute(t, "build", filepath.Join(dir, "power.board"), "-o", dir, "-f", "json", "--no-history"); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "history.db")); !os.IsNotExist(err) {
		t.Errorf("history database was created: %v", err)
	}
}

func TestPlotE2E(t *testing.T) {
	dir := workspace(t, map[string]string{"power.board": powerSupply})
	out := filepath.Join(dir, "placement.svg")

	output, err := execute(t, "plot", filepath.Join(dir, "power.board"), "-o", out)
	if err != nil {
		t.Fatalf("plot failed: %v\nOutput: %s", err, output)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("plot is not an SVG")
	}

	if _, err := execute(t, "plot", filepath.Join(dir, "power.board"), "-o", filepath.Join(dir, "placement.kicad_pcb")); err == nil {
		t.Error("Expected error for non-image output")
	}
}

func TestConfigE2E(t *testing.T) {
	dir := workspace(t, nil)
	path := filepath.Join(dir, "pcbgen.toml")

	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Error("Expected error when the file exists")
	}

	output, err := execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"[output]", "[kicad]", "history.db"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\nGot:\n%s", want, output)
		}
	}
}

func TestLoadBoard(t *testing.T) {
	dir := workspace(t, map[string]string{"power.board": powerSupply})
	cfg = config.DefaultConfig()

	board, err := loadBoard(filepath.Join(dir, "power.board"))
	if err != nil {
		t.Fatalf("loadBoard failed: %v", err)
	}
	if len(board.Footprints) != 3 {
		t.Errorf("expected 3 footprints, got %d", len(board.Footprints))
	}
	if board.GetNetInfo("vout") == nil {
		t.Error("vout net missing")
	}
}
