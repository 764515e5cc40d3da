package sample

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	assert.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 4.0, m.At(1, 1))
}

func TestFromRowsErrors(t *testing.T) {
	tt := []struct {
		name string
		rows [][]float64
		want error
	}{
		{name: "no rows", rows: nil, want: EmptyData{}},
		{name: "no variables", rows: [][]float64{{}}, want: EmptyData{}},
		{name: "ragged", rows: [][]float64{{1, 2}, {3}}, want: RaggedRow{}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			m, err := FromRows(tc.rows)
			assert.Error(t, err)
			assert.IsType(t, tc.want, err)
			assert.Nil(t, m)
		})
	}
}

func TestLoad(t *testing.T) {
	in := "x1,x2,x3\n1.0,2.0,3.0\n4.0,5.5,6.25\n"
	m, err := Load(strings.NewReader(in), true)
	assert.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 5.5, m.At(1, 1))
}

func TestLoadNoHeader(t *testing.T) {
	in := "1,2\n3,4\n"
	m, err := Load(strings.NewReader(in), false)
	assert.NoError(t, err)
	r, _ := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3.0, m.At(1, 0))
}

func TestLoadErrors(t *testing.T) {
	tt := []struct {
		name   string
		in     string
		header bool
		want   error
	}{
		{name: "empty", in: "", header: false, want: EmptyData{}},
		{name: "header only", in: "x1,x2\n", header: true, want: EmptyData{}},
		{name: "bad number", in: "1,2\n3,oops\n", header: false, want: BadValue{}},
		{name: "ragged", in: "1,2\n3\n", header: false, want: RaggedRow{}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Load(strings.NewReader(tc.in), tc.header)
			assert.Error(t, err)
			assert.IsType(t, tc.want, err)
			assert.Nil(t, m)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.csv")
	assert.NoError(t, os.WriteFile(path, []byte("1,2\n3,4\n"), 0644))

	m, err := LoadFile(path, false)
	assert.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), false)
	assert.Error(t, err)
}
