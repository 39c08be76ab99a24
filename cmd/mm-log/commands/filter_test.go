package commands

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meshmodel/mm-go/pkg/log"
)

func countEvents(t *testing.T, path string) int {
	t.Helper()
	r, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer r.Close()

	n := 0
	for {
		_, err := r.Next()
		if err == io.EOF {
			return n
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		n++
	}
}

func TestFilterWritesMatchingEvents(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	tests := []struct {
		name string
		opts FilterOptions
		want int
	}{
		{"session", FilterOptions{SessionID: "def67890-0000"}, 2},
		{"node", FilterOptions{Node: "0001"}, 1},
		{"src", FilterOptions{Src: "0x0001"}, 2},
		{"opcode", FilterOptions{Opcode: "8202"}, 1},
		{"dropped", FilterOptions{Dropped: true}, 1},
		{"layer", FilterOptions{Layer: "model"}, 1},
		{"time window", FilterOptions{TimeStart: "2026-01-28T10:15:33Z"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Output = filepath.Join(t.TempDir(), "out"+log.FileExtension)
			n, err := RunFilter(path, tt.opts)
			if err != nil {
				t.Fatalf("RunFilter failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("RunFilter() = %d, want %d", n, tt.want)
			}
			if got := countEvents(t, tt.opts.Output); got != tt.want {
				t.Errorf("output holds %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestFilterRejectsBadOptions(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out"+log.FileExtension)

	for _, opts := range []FilterOptions{
		{Output: out, TimeStart: "yesterday"},
		{Output: out, Direction: "sideways"},
		{Output: out, Opcode: "nope"},
		{Output: out, Node: "-1"},
	} {
		if _, err := RunFilter(path, opts); err == nil {
			t.Errorf("RunFilter(%+v) should fail", opts)
		}
	}
}

func TestRootCommandRunsStats(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"stats", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 3") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRootCommandFilterRequiresOutput(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"filter", path})
	if err := root.Execute(); err == nil {
		t.Error("expected missing --output to fail")
	}
}
