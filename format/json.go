package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/giftlint/diagnose"
)

type JSONEncoder struct {
	w      io.Writer
	report diagnose.Report
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(report diagnose.Report) error {
	e.report = report
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	report := e.report
	if report.Diagnostics == nil {
		report.Diagnostics = []diagnose.Diagnostic{}
	}
	return json.MarshalIndent(report, "", "  ")
}
