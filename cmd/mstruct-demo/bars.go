package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/nicewolf/mstruct/internal/model"
)

// loadBarsCSV reads a headerless CSV of
// timestamp(RFC3339),open,high,low,close,volume rows into bars, in file
// order (the engines reject out-of-order input themselves).
func loadBarsCSV(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bar file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	var bars []model.Bar
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading bar row: %w", err)
		}
		bar, err := parseBarRow(record)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBarRow(record []string) (model.Bar, error) {
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return model.Bar{}, fmt.Errorf("parsing timestamp %q: %w", record[0], err)
	}
	fields := make([]float64, 5)
	for i, s := range record[1:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("parsing field %q: %w", s, err)
		}
		fields[i] = v
	}
	return model.Bar{
		Timestamp: ts,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}
