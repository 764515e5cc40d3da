package mspm

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testReport() *Report {
	return &Report{
		Chart:      "t2",
		Method:     "classical",
		Rows:       4,
		Variables:  2,
		Limit:      10.5,
		Statistics: []float64{1.2, 3.4, 12.9, 2.2},
		Alarms:     []bool{false, false, true, false},
		AlarmCount: 1,
		FirstAlarm: 2,
		CreatedAt:  1735689600,
	}
}

func TestRenderText(t *testing.T) {
	var b bytes.Buffer
	assert.NoError(t, testReport().Render(&b, "text"))
	out := b.String()
	assert.Contains(t, out, "chart:        t2")
	assert.Contains(t, out, "limit:        10.5000")
	assert.Contains(t, out, "1 of 4, first at index 2")
}

func TestRenderTextNoAlarms(t *testing.T) {
	r := testReport()
	r.Alarms = []bool{false, false, false, false}
	r.AlarmCount = 0
	r.FirstAlarm = -1

	var b bytes.Buffer
	assert.NoError(t, r.Render(&b, "text"))
	assert.Contains(t, b.String(), "alarms:       none")
}

func TestRenderTextIncludesLambda(t *testing.T) {
	r := testReport()
	r.Chart = "mewma"
	r.Lambda = 0.1

	var b bytes.Buffer
	assert.NoError(t, r.Render(&b, "text"))
	assert.Contains(t, b.String(), "lambda:       0.100")
}

func TestRenderJSON(t *testing.T) {
	var b bytes.Buffer
	assert.NoError(t, testReport().Render(&b, "json"))

	var back Report
	assert.NoError(t, json.Unmarshal(b.Bytes(), &back))
	assert.Equal(t, *testReport(), back)
}

func TestRenderLogfmt(t *testing.T) {
	var b bytes.Buffer
	assert.NoError(t, testReport().Render(&b, "logfmt"))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "chart=t2")
	assert.Contains(t, lines[0], "index=0")
	assert.Contains(t, lines[2], "alarm=true")
	assert.Contains(t, lines[3], "alarm=false")
}

func TestRenderUnknownFormat(t *testing.T) {
	var b bytes.Buffer
	assert.Error(t, testReport().Render(&b, "xml"))
}

func TestHasAlarms(t *testing.T) {
	assert.True(t, testReport().HasAlarms())
	r := testReport()
	r.AlarmCount = 0
	assert.False(t, r.HasAlarms())
}
