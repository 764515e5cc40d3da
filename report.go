package mspm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-logfmt/logfmt"
	"gonum.org/v1/gonum/mat"
)

// Report summarizes a monitoring run.  FirstAlarm is -1 when no observation
// exceeded the control limit.
type Report struct {
	Chart      string    `json:"chart"`
	Method     string    `json:"method"`
	Rows       int       `json:"rows"`
	Variables  int       `json:"variables"`
	Lambda     float64   `json:"lambda,omitempty"`
	Limit      float64   `json:"limit"`
	Statistics []float64 `json:"statistics"`
	Alarms     []bool    `json:"alarms"`
	AlarmCount int       `json:"alarm_count"`
	FirstAlarm int       `json:"first_alarm"`
	CreatedAt  int64     `json:"created_at"`
}

func newReport(cfg *Config, test mat.Matrix, stats []float64, limit float64, alarms []bool, lambda float64) *Report {
	rows, cols := test.Dims()
	r := &Report{
		Chart:      cfg.Chart,
		Method:     string(cfg.Method),
		Rows:       rows,
		Variables:  cols,
		Lambda:     lambda,
		Limit:      limit,
		Statistics: stats,
		Alarms:     alarms,
		FirstAlarm: -1,
		CreatedAt:  time.Now().Unix(),
	}
	for i, a := range alarms {
		if a {
			if r.FirstAlarm < 0 {
				r.FirstAlarm = i
			}
			r.AlarmCount++
		}
	}
	return r
}

// HasAlarms reports whether any monitored observation exceeded the limit
func (r *Report) HasAlarms() bool {
	return r.AlarmCount > 0
}

// Render writes the report to w as text, json, or logfmt
func (r *Report) Render(w io.Writer, format string) error {
	switch format {
	case "json":
		return r.renderJSON(w)
	case "logfmt":
		return r.renderLogfmt(w)
	case "text", "":
		return r.renderText(w)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

func (r *Report) renderJSON(w io.Writer) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// renderLogfmt writes one record per monitored observation so the output can
// be fed straight into log pipelines
func (r *Report) renderLogfmt(w io.Writer) error {
	e := logfmt.NewEncoder(w)
	for i, s := range r.Statistics {
		if err := e.EncodeKeyvals(
			"chart", r.Chart,
			"index", i,
			"statistic", s,
			"limit", r.Limit,
			"alarm", r.Alarms[i],
		); err != nil {
			return err
		}
		if err := e.EndRecord(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) renderText(w io.Writer) error {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("chart:        %s\n", r.Chart))
	if r.Chart == "mewma" {
		b.WriteString(fmt.Sprintf("lambda:       %.3f\n", r.Lambda))
	}
	b.WriteString(fmt.Sprintf("method:       %s\n", r.Method))
	b.WriteString(fmt.Sprintf("observations: %d rows of %d variables\n", r.Rows, r.Variables))
	b.WriteString(fmt.Sprintf("limit:        %.4f\n", r.Limit))
	switch {
	case r.AlarmCount > 0:
		b.WriteString(fmt.Sprintf("alarms:       %d of %d, first at index %d\n", r.AlarmCount, r.Rows, r.FirstAlarm))
	default:
		b.WriteString("alarms:       none\n")
	}
	_, err := w.Write(b.Bytes())
	return err
}
