package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/multierr"
)

const csvHeader = "geometry_id,hit_id,channel0,channel1,timestamp,value"

var csvColumns = []string{"geometry_id", "hit_id", "channel0", "channel1", "timestamp", "value"}

var ErrBadRecord = errors.New("malformed hit record")

// WriteCSV dumps the accumulator as hit records, one line per cell, ordered by coordinates.
// geometry_id, hit_id and timestamp are always 0.
func WriteCSV(w io.Writer, acc Accumulator) error {
	bw := bufio.NewWriterSize(w, writeBufferSize)
	if _, err := fmt.Fprintln(bw, csvHeader); err != nil {
		return err
	}
	for _, p := range acc.Points() {
		if _, err := fmt.Fprintf(bw, "0, 0, %d, %d, 0, %f\n", p.X, p.Y, acc[p]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCSVFile creates (or truncates) path and writes the accumulator to it.
// The file is closed even when writing fails.
func WriteCSVFile(path string, acc Accumulator) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	if err = WriteCSV(file, acc); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadCSV parses hit records back into an accumulator. Records sharing a
// coordinate are summed.
func ReadCSV(r io.Reader) (Accumulator, error) {
	// initialize csv parser
	csvReader := csv.NewReader(bufio.NewReaderSize(r, readBufferSize))
	csvReader.ReuseRecord = true
	csvReader.Comma = ','
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = len(csvColumns)

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrBadRecord)
		}
		return nil, fmt.Errorf("%w: header: %v", ErrBadRecord, err)
	}
	for i, col := range csvColumns {
		if header[i] != col {
			return nil, fmt.Errorf("%w: header column %d is %q, expected %q", ErrBadRecord, i, header[i], col)
		}
	}

	acc := make(Accumulator)
	for line := 2; ; line++ {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return acc, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
		}

		x, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: channel0 %q is not an integer", ErrBadRecord, line, record[2])
		}
		y, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: channel1 %q is not an integer", ErrBadRecord, line, record[3])
		}
		v, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: value %q is not a number", ErrBadRecord, line, record[5])
		}
		acc.Add(Point{X: x, Y: y}, v)
	}
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (Accumulator, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	acc, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return acc, nil
}
