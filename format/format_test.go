package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/gift"
)

func sampleReport() diagnose.Report {
	return diagnose.Report{
		File:       "quiz.gift",
		LineEnding: "\n",
		Chunks:     2,
		Source:     "Q0 {T}\n\nQ1 ~ A\n",
		Diagnostics: []diagnose.Diagnostic{
			{
				Message: `Expected "{" or text but "~" found.`,
				Found:   "~",
				Span: gift.Span{
					Start: gift.Position{Line: 3, Column: 4, Offset: 11},
					End:   gift.Position{Line: 3, Column: 5, Offset: 12},
				},
				Notes: []string{"escape it as \\~"},
			},
		},
	}
}

func TestTextEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextEncoder(&buf, Options{}).Encode(sampleReport()))

	want := "quiz.gift:3:4: error:\n" +
		"  Expected \"{\" or text but \"~\" found.\n" +
		" 3 | Q1 ~ A\n" +
		"   |    ^\n" +
		"  note: escape it as \\~\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestTextEncoderColor(t *testing.T) {
	text, err := NewTextEncoder(nil, Options{Color: true}).encodeForTest(sampleReport())
	require.NoError(t, err)
	assert.Contains(t, text, "\x1b[1;31merror:\x1b[0m")
	assert.Contains(t, text, "\x1b[36mnote:\x1b[0m")
}

func (e *TextEncoder) encodeForTest(report diagnose.Report) (string, error) {
	e.report = report
	text, err := e.MarshalText()
	return string(text), err
}

func TestTextEncoderWrap(t *testing.T) {
	report := sampleReport()
	report.Diagnostics[0].Message = strings.Repeat("wrapped words ", 10)

	text, err := NewTextEncoder(nil, Options{Wrap: 20}).encodeForTest(report)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	var message []string
	for _, l := range lines[1:] {
		if !strings.HasPrefix(l, "  ") || strings.HasPrefix(l, "  note:") {
			break
		}
		message = append(message, strings.TrimSpace(l))
		assert.LessOrEqual(t, len(l), 22, l)
	}
	assert.Greater(t, len(message), 1)
	assert.Equal(t, strings.Fields(report.Diagnostics[0].Message), strings.Fields(strings.Join(message, " ")))
}

func TestTextEncoderWithoutSource(t *testing.T) {
	report := sampleReport()
	report.Source = ""
	text, err := NewTextEncoder(nil, Options{}).encodeForTest(report)
	require.NoError(t, err)
	assert.NotContains(t, text, "|")
}

func TestMarkers(t *testing.T) {
	d := diagnose.Diagnostic{Span: gift.Span{
		Start: gift.Position{Line: 1, Column: 3},
		End:   gift.Position{Line: 2, Column: 1},
	}}
	assert.Equal(t, "^^^", markers(d, "abcde"))

	d.Span.End = d.Span.Start
	assert.Equal(t, "^", markers(d, "abcde"))

	assert.Equal(t, "\t  ", padding("\tab:", 4))
	assert.Equal(t, "    ", padding("ab", 5))
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	report := sampleReport()
	report.File = ""
	require.NoError(t, NewLineEncoder(&buf).Encode(report))
	assert.Equal(t, "<stdin>:3:4: Expected \"{\" or text but \"~\" found.\n", buf.String())
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "quiz.gift", got["file"])
	assert.NotContains(t, got, "source")
	diags := got["diagnostics"].([]any)
	require.Len(t, diags, 1)
	start := diags[0].(map[string]any)["span"].(map[string]any)["start"].(map[string]any)
	assert.Equal(t, float64(11), start["offset"])

	buf.Reset()
	require.NoError(t, NewJSONEncoder(&buf).Encode(diagnose.Report{File: "ok.gift"}))
	assert.Contains(t, buf.String(), `"diagnostics": []`)
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		enc, err := New(name, &bytes.Buffer{}, Options{})
		require.NoError(t, err)
		assert.NotNil(t, enc)
	}
	_, err := New("yaml", &bytes.Buffer{}, Options{})
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	report := sampleReport()
	report.Diagnostics[0].Incomplete = true
	out := Summary([]diagnose.Report{report, {File: "ok.gift", Chunks: 3}}, 80)
	assert.Contains(t, out, "File")
	assert.Contains(t, out, "quiz.gift")
	assert.Contains(t, out, "ok.gift")

	widest := func(table string) int {
		n := 0
		for _, line := range strings.Split(table, "\n") {
			n = max(n, len(line))
		}
		return n
	}
	narrow := widest(Summary([]diagnose.Report{report}, 50))
	wide := widest(Summary([]diagnose.Report{report}, 120))
	assert.LessOrEqual(t, narrow, 50)
	assert.LessOrEqual(t, wide, 120)
	assert.Greater(t, wide, narrow)
	assert.Equal(t, Summary([]diagnose.Report{report}, DefaultTableWidth), Summary([]diagnose.Report{report}, 0))
}
