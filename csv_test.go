package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name string
		acc  Accumulator
		want string
	}{
		{
			name: "empty accumulator",
			acc:  Accumulator{},
			want: csvHeader + "\n",
		},
		{
			name: "ordered by coordinates",
			acc:  Accumulator{{1, 2}: 5.5, {0, 3}: 0.25, {65535, 0}: 7.1234567},
			want: csvHeader + "\n" +
				"0, 0, 0, 3, 0, 0.250000\n" +
				"0, 0, 1, 2, 0, 5.500000\n" +
				"0, 0, 65535, 0, 0, 7.123457\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, tt.acc))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVFileRoundTrip(t *testing.T) {
	acc, _, err := Generate(NewRand(11), Options{Seeds: 200, Dim: DefaultDim})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "hits.csv")
	require.NoError(t, WriteCSVFile(path, acc))

	got, err := ReadCSVFile(path)
	require.NoError(t, err)
	require.Len(t, got, len(acc))
	for p, v := range acc {
		assert.InDelta(t, v, got[p], 1e-6, "point %v", p)
	}
}

func TestWriteCSVFileNoSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	acc, _, err := Generate(NewRand(1), Options{Seeds: 0, Dim: DefaultDim})
	require.NoError(t, err)
	require.NoError(t, WriteCSVFile(path, acc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, csvHeader+"\n", string(data))
}

func TestWriteCSVFileUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "hits.csv")
	err := WriteCSVFile(path, Accumulator{{1, 1}: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestReadCSV(t *testing.T) {
	t.Run("sums duplicate coordinates", func(t *testing.T) {
		input := csvHeader + "\n0, 0, 4, 5, 0, 1.500000\n0, 0, 4, 5, 0, 2.000000\n0,0,1,1,0,0.1\n"
		acc, err := ReadCSV(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, Accumulator{{4, 5}: 3.5, {1, 1}: 0.1}, acc)
	})

	t.Run("header only", func(t *testing.T) {
		acc, err := ReadCSV(strings.NewReader(csvHeader + "\n"))
		require.NoError(t, err)
		assert.Empty(t, acc)
	})

	malformed := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "empty input", input: "", wantMsg: "missing header"},
		{name: "wrong header", input: "a,b,c,d,e,f\n", wantMsg: "header column 0"},
		{name: "short header", input: "geometry_id,hit_id\n", wantMsg: "header"},
		{name: "bad channel0", input: csvHeader + "\n0, 0, x, 5, 0, 1.0\n", wantMsg: "line 2: channel0"},
		{name: "bad channel1", input: csvHeader + "\n0, 0, 1, 5, 0, 1.0\n0, 0, 1, 1.5, 0, 1.0\n", wantMsg: "line 3: channel1"},
		{name: "bad value", input: csvHeader + "\n0, 0, 1, 5, 0, abc\n", wantMsg: "value"},
		{name: "missing field", input: csvHeader + "\n0, 0, 1, 5, 1.0\n", wantMsg: "number of fields"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrBadRecord)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
