package pipeline

import "testing"

func TestParseDescription(t *testing.T) {
	raw := `[
		["tallypipe.pipes.results.load", null],
		["tallypipe.pipes.sort.sort_non_iterative", {"question_indexes": [0]}]
	]`

	desc, err := ParseDescription([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(desc) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(desc))
	}
	if desc[0].ID != "tallypipe.pipes.results.load" {
		t.Errorf("unexpected first id: %q", desc[0].ID)
	}
	if desc[0].Config != nil {
		t.Errorf("expected nil config for null, got %v", desc[0].Config)
	}
	if desc[1].Config["question_indexes"] == nil {
		t.Error("expected question_indexes in second config")
	}
}

func TestParseDescription_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not an array", `{"a": 1}`},
		{"entry too short", `[["tallypipe.pipes.results.load"]]`},
		{"entry too long", `[["a", null, null]]`},
		{"identifier not a string", `[[1, null]]`},
		{"config not a mapping", `[["tallypipe.pipes.results.load", [1]]]`},
		{"trailing garbage", `[] x`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseDescription([]byte(tc.raw)); err == nil {
				t.Fatalf("expected parse error for %s", tc.raw)
			}
		})
	}
}
