package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/window-tiler/internal/model"
)

func sampleResult() MatchResult {
	return MatchResult{
		Process: "Memu",
		Pattern: `\((\d*)_\w*\)`,
		Group:   1,
		TS:      1707500000,
		Windows: []model.MatchedWindow{
			{Handle: 7, Capture: "3", Bounds: model.Bounds{X: 10, Y: 20, Width: 480, Height: 816}},
		},
	}
}

func TestFprintYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := FprintYAML(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}

	var decoded MatchResult
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Process != "Memu" {
		t.Errorf("process: got %q, want %q", decoded.Process, "Memu")
	}
	if len(decoded.Windows) != 1 || decoded.Windows[0].Capture != "3" {
		t.Errorf("windows: got %+v", decoded.Windows)
	}
}

func TestFprintJSON(t *testing.T) {
	tests := []struct {
		name      string
		pretty    bool
		multiLine bool
	}{
		{"compact", false, false},
		{"pretty", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := FprintJSON(&buf, sampleResult(), tt.pretty); err != nil {
				t.Fatal(err)
			}
			if got := strings.Count(buf.String(), "\n") > 1; got != tt.multiLine {
				t.Errorf("multi-line = %v, want %v:\n%s", got, tt.multiLine, buf.String())
			}
			var decoded MatchResult
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if decoded.Windows[0].Bounds.Width != 480 {
				t.Errorf("width: got %d", decoded.Windows[0].Bounds.Width)
			}
		})
	}
}

func TestFprintJSON_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	if err := FprintJSON(&buf, map[string]string{"p": "<a&b>"}, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<a&b>") {
		t.Errorf("expected unescaped output, got %s", buf.String())
	}
}

func TestFprint_UsesOutputFormat(t *testing.T) {
	old := OutputFormat
	defer func() { OutputFormat = old }()

	OutputFormat = FormatJSON
	var buf bytes.Buffer
	if err := Fprint(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `{"a":1}` {
		t.Errorf("got %q", buf.String())
	}

	OutputFormat = "xml"
	if err := Fprint(&buf, 1); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "JSON": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("expected error for toml")
	}
}

func TestRulesResult_OmitEmpty(t *testing.T) {
	out, err := YAMLString(RulesResult{Path: "/x"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "defaults") {
		t.Errorf("defaults should be omitted when false:\n%s", out)
	}
}
