package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/moltda/pkg/persim"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

func TestParseInts(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"0,1,2", []int{0, 1, 2}, false},
		{" 1, 3", []int{1, 3}, false},
		{"1,x", nil, true},
	}
	for _, tt := range tests {
		got, err := parseInts(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseInts(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseInts(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseInts(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestParsePixels(t *testing.T) {
	tests := []struct {
		in      string
		want    [2]int
		wantErr bool
	}{
		{"20", [2]int{20, 20}, false},
		{"20,10", [2]int{20, 10}, false},
		{"1,2,3", [2]int{}, true},
		{"a", [2]int{}, true},
	}
	for _, tt := range tests {
		got, err := parsePixels(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePixels(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parsePixels(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func testCLI() *CLI {
	return New(&bytes.Buffer{}, log.InfoLevel)
}

func flagCommand(flags *vectorizeFlags, args ...string) (*cobra.Command, error) {
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	return cmd, cmd.Flags().Parse(args)
}

func TestVectorizeFlagsOptions(t *testing.T) {
	var flags vectorizeFlags
	cmd, err := flagCommand(&flags, "--pixels", "20,10", "--spread", "0", "--dims", "1", "--maxB", "4", "--maxP", "2", "-f", "json,png")
	if err != nil {
		t.Fatal(err)
	}

	opts, err := flags.options(testCLI(), cmd)
	if err != nil {
		t.Fatalf("options() error = %v", err)
	}
	if opts.Pixels != [2]int{20, 10} {
		t.Errorf("Pixels = %v, want [20 10]", opts.Pixels)
	}
	if opts.SpreadValue() != 0 {
		t.Errorf("Spread = %v, want 0", opts.SpreadValue())
	}
	if len(opts.Specs) != 1 || opts.Specs[0] != (persim.Specs{MaxB: 4, MaxP: 2}) {
		t.Errorf("Specs = %v, want one shared spec", opts.Specs)
	}
	if len(opts.Formats) != 2 {
		t.Errorf("Formats = %v, want [json png]", opts.Formats)
	}
}

func TestVectorizeFlagsConfigDefaults(t *testing.T) {
	c := testCLI()
	c.Config.Pipeline.Weighting = "linear"
	c.Config.Pipeline.Pixels = [2]int{7, 7}

	var flags vectorizeFlags
	cmd, err := flagCommand(&flags, "--pixels", "5")
	if err != nil {
		t.Fatal(err)
	}
	opts, err := flags.options(c, cmd)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Weighting != "linear" {
		t.Errorf("Weighting = %q, want config value linear", opts.Weighting)
	}
	if opts.Pixels != [2]int{5, 5} {
		t.Errorf("Pixels = %v, want flag value [5 5]", opts.Pixels)
	}
	if opts.SpreadValue() != pipeline.DefaultSpread {
		t.Errorf("Spread = %v, want default", opts.SpreadValue())
	}
}

func TestVectorizeFlagsErrors(t *testing.T) {
	tests := [][]string{
		{"--maxB", "1"},
		{"--weighting", "quadratic"},
		{"--dims", "a"},
		{"-f", "svg"},
	}
	for _, args := range tests {
		var flags vectorizeFlags
		cmd, err := flagCommand(&flags, args...)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := flags.options(testCLI(), cmd); err == nil {
			t.Errorf("options(%v) should fail", args)
		}
	}
}

func TestArtifactPaths(t *testing.T) {
	artifacts := map[string][]byte{
		pipeline.ArtifactResult:   nil,
		pipeline.ArtifactDiagrams: nil,
		pipeline.PNGArtifact(1):   nil,
	}

	tests := []struct {
		name   string
		input  string
		output string
		want   map[string]string
	}{
		{
			name:  "default",
			input: "data/water.json",
			want: map[string]string{
				"result.json":  "water_result.json",
				"diagrams.csv": "water_diagrams.csv",
				"dim1.png":     "water_dim1.png",
			},
		},
		{
			name:   "explicit output",
			input:  "water.json",
			output: "out/run.json",
			want: map[string]string{
				"result.json":  "out/run.json",
				"diagrams.csv": "out/run_diagrams.csv",
				"dim1.png":     "out/run_dim1.png",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactPaths(tt.input, tt.output, artifacts)
			for name, want := range tt.want {
				if got[name] != want {
					t.Errorf("path[%s] = %q, want %q", name, got[name], want)
				}
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	res := &pipeline.Result{Artifacts: map[string][]byte{
		pipeline.ArtifactResult: []byte("{}"),
		pipeline.PNGArtifact(0): []byte("png"),
	}}

	written, err := writeArtifacts(filepath.Join(dir, "in.csv"), filepath.Join(dir, "out", "r.json"), res)
	if err != nil {
		t.Fatalf("writeArtifacts() error = %v", err)
	}
	sort.Strings(written)
	want := []string{filepath.Join(dir, "out", "r.json"), filepath.Join(dir, "out", "r_dim0.png")}
	sort.Strings(want)
	if len(written) != 2 || written[0] != want[0] || written[1] != want[1] {
		t.Errorf("written = %v, want %v", written, want)
	}
	if data, _ := os.ReadFile(filepath.Join(dir, "out", "r.json")); string(data) != "{}" {
		t.Errorf("r.json = %q, want %q", data, "{}")
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	root := testCLI().RootCommand()
	for _, name := range []string{"vectorize", "batch", "compute", "serve", "results", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVectorizeCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("MOLTDA_REDIS_ADDR", "")
	t.Setenv("MOLTDA_MONGO_URI", "")
	input := filepath.Join(dir, "diagrams", "water.json")
	if err := os.MkdirAll(filepath.Dir(input), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(input, []byte(`{"dim0": [[0, 1], [0, 2]], "dim1": [[1, 3]]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	root := testCLI().RootCommand()
	root.SetArgs([]string{"vectorize", input, "--pixels", "4", "--dims", "0,1", "-f", "json,png"})
	if err := root.Execute(); err != nil {
		t.Fatalf("vectorize error = %v", err)
	}

	for _, name := range []string{"water_result.json", "water_dim0.png", "water_dim1.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}
