package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/hsv-vvk/internal/match"
)

const fixturePath = "../../testdata/fixtures/ticketinfos.html"

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("SOURCE_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand_JSON(t *testing.T) {
	out, err := runCmd(t, "list", "--file", fixturePath, "--format", "json")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	if result.EventCount != 3 {
		t.Errorf("EventCount = %d, want 3", result.EventCount)
	}
	if result.Team != "HSV" {
		t.Errorf("Team = %q, want HSV", result.Team)
	}
	if result.Mismatched != 1 {
		t.Errorf("Mismatched = %d, want 1", result.Mismatched)
	}
	if result.Source != fixturePath {
		t.Errorf("Source = %q, want %q", result.Source, fixturePath)
	}
}

func TestListCommand_Text(t *testing.T) {
	out, err := runCmd(t, "list", "--file", fixturePath, "--sort", "opponent")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"VVK: HSV - Hannover 96",
		"Auswärtsspiel gegen SV Darmstadt 98 im Zeitraum: 16.08.24 - 18.08.24",
		"Total: 3 pre-sales (8 rows, 4 skipped, 1 with unexpected layout)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// opponent order: Hannover 96, SSV Ulm 1846, SV Darmstadt 98
	if strings.Index(out, "Hannover") > strings.Index(out, "Ulm") {
		t.Errorf("expected Hannover before Ulm:\n%s", out)
	}
}

func TestListCommand_InvalidFlags(t *testing.T) {
	if _, err := runCmd(t, "list", "--file", fixturePath, "--format", "xml"); err == nil {
		t.Error("expected error for invalid format")
	}
	if _, err := runCmd(t, "list", "--file", fixturePath, "--sort", "kickoff"); err == nil {
		t.Error("expected error for invalid sort order")
	}
	if _, err := runCmd(t, "list", "--file", "does-not-exist.html"); err == nil {
		t.Error("expected error for missing page file")
	}
}

func TestListCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("feed:\n  timezone: Mars/Olympus\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := runCmd(t, "list", "--config", path, "--file", fixturePath)
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("err = %v, want configuration validation error", err)
	}
}

func TestExportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.ics")

	if out, err := runCmd(t, "export", "--file", fixturePath, "--output", path); err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if got := strings.Count(string(data), "BEGIN:VEVENT"); got != 3 {
		t.Errorf("export has %d events, want 3", got)
	}
}

func TestExportCommand_Stdout(t *testing.T) {
	out, err := runCmd(t, "export", "--file", fixturePath, "--output", "-")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(out, "BEGIN:VCALENDAR") {
		t.Errorf("stdout export should start with BEGIN:VCALENDAR, got %q", out[:min(len(out), 40)])
	}
}

func TestSortEvents(t *testing.T) {
	at := func(day int) time.Time {
		return time.Date(2024, time.August, day, 10, 0, 0, 0, match.Berlin)
	}
	events := []*match.Event{
		{Summary: "c", Start: at(3), Home: "HSV", Away: "Werder", IsHome: true},
		{Summary: "a", Start: at(1), Home: "Arminia", Away: "HSV"},
		{Summary: "b", Start: at(2), Home: "HSV", Away: "Braunschweig", IsHome: true},
	}

	tests := []struct {
		order SortOrder
		want  string
	}{
		{SortByPage, "cab"},
		{SortByPreSale, "abc"},
		{SortByOpponent, "abc"},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			sorted := append([]*match.Event(nil), events...)
			sortEvents(sorted, tt.order)

			var got string
			for _, evt := range sorted {
				got += evt.Summary
			}
			if got != tt.want {
				t.Errorf("sortEvents(%s) = %q, want %q", tt.order, got, tt.want)
			}
		})
	}
}

func TestWriteOutput_Degraded(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOutput(&buf, &OutputResult{Source: "https://example.com", Degraded: true}, FormatText)
	if err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Could not read https://example.com") {
		t.Errorf("output = %q", buf.String())
	}
}
