package jsonext

import "testing"

func TestExtract_Fenced(t *testing.T) {
	raw := "```json\n{\"ats_score\": 8}\n```"
	data, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"ats_score": 8}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestExtract_BareFence(t *testing.T) {
	raw := "```\n{\"a\": 1}\n```"
	data, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"a": 1}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestExtract_SurroundingProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n{\"a\": 1, \"b\": [2, 3]}\nLet me know if you need more."
	data, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"a": 1, "b": [2, 3]}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestExtract_NestedObjects(t *testing.T) {
	raw := `result: {"section_scores": {"skills": 7, "experience": 8}, "ats_score": 7}`
	data, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"section_scores": {"skills": 7, "experience": 8}, "ats_score": 7}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestExtract_BracesInsideStrings(t *testing.T) {
	raw := `{"detailed_analysis": "uses {braces} and \"quotes\" inside"}`
	data, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != raw {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestExtract_NoObject(t *testing.T) {
	if _, err := Extract("I could not produce a score this time."); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtract_Unterminated(t *testing.T) {
	if _, err := Extract(`{"a": 1`); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtract_Malformed(t *testing.T) {
	if _, err := Extract(`{"a": }`); err == nil {
		t.Fatal("expected error")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\ntext\n```", "text"},
		{"  plain  ", "plain"},
	}
	for _, tc := range tests {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
