package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/veltio/tallypipe/internal/tally"
)

func fixtureResults() *tally.Results {
	pos := 0
	return &tally.Results{
		Questions: []*tally.Question{{
			Title:      "Board",
			TallyType:  "plurality-at-large",
			NumWinners: 1,
			Answers: []*tally.Answer{
				{ID: 0, Text: "Alice", TotalCount: 30, WinnerPosition: &pos},
				{ID: 1, Text: "Bob", TotalCount: 20},
			},
		}},
	}
}

func TestFormats(t *testing.T) {
	formats := Formats()
	for _, want := range []string{"csv", "json", "pretty", "tsv"} {
		found := false
		for _, f := range formats {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected builtin format %q in %v", want, formats)
		}
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Render("xml", &buf, fixtureResults()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render("json", &buf, fixtureResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded tally.Results
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(decoded.Questions))
	}
	if decoded.Questions[0].Answers[0].WinnerPosition == nil {
		t.Error("expected winner position to round-trip")
	}
	if decoded.Questions[0].Answers[1].WinnerPosition != nil {
		t.Error("expected nil winner position to round-trip")
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Render("csv", &buf, fixtureResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Alice") || !strings.Contains(lines[1], "30") {
		t.Errorf("unexpected first row: %q", lines[1])
	}
}

func TestRenderTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Render("tsv", &buf, fixtureResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "\t") {
		t.Error("expected tab-delimited output")
	}
}

func TestRenderPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render("pretty", &buf, fixtureResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Board") {
		t.Error("expected question title in pretty output")
	}
	if !strings.Contains(out, "Alice") {
		t.Error("expected answer text in pretty output")
	}
}
