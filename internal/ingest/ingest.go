// Package ingest reads (name, description) topic lists from XLSX or CSV
// files and feeds them to the scheduler.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rcliao/revisit/internal/leitner"
	"github.com/rcliao/revisit/internal/model"
)

// Options selects where topics live in the file.
type Options struct {
	Sheet             string // XLSX only; empty means the first sheet
	NameColumn        int    // 0-based
	DescriptionColumn int    // 0-based; negative means none
	SkipHeader        bool
}

// DefaultOptions reads names from column A and descriptions from column B,
// skipping a header row.
func DefaultOptions() Options {
	return Options{NameColumn: 0, DescriptionColumn: 1, SkipHeader: true}
}

// Topic is one row of an ingested list.
type Topic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ReadFile reads topics from path. The format is chosen by extension.
func ReadFile(path string, opts Options) ([]Topic, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f, opts)
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return readWorkbook(f, opts)
	default:
		return nil, fmt.Errorf("unsupported file type %q (use .xlsx or .csv)", filepath.Ext(path))
	}
}

// ReadCSV reads topics from CSV data.
func ReadCSV(r io.Reader, opts Options) ([]Topic, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return fromRows(rows, opts), nil
}

// ReadWorkbook reads topics from an XLSX stream.
func ReadWorkbook(r io.Reader, opts Options) ([]Topic, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, opts)
}

func readWorkbook(f *excelize.File, opts Options) ([]Topic, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows, opts), nil
}

func fromRows(rows [][]string, opts Options) []Topic {
	if opts.SkipHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	var topics []Topic
	for _, row := range rows {
		name := cell(row, opts.NameColumn)
		if name == "" {
			continue
		}
		topics = append(topics, Topic{Name: name, Description: cell(row, opts.DescriptionColumn)})
	}
	return topics
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Adder is the part of the scheduler ingestion needs.
type Adder interface {
	Add(ctx context.Context, name, description string) (*model.ReviewItem, error)
}

// Result summarizes an import.
type Result struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// Import adds every topic. Existing or blank names are skipped; any other
// error aborts the import.
func Import(ctx context.Context, a Adder, topics []Topic) (*Result, error) {
	res := &Result{}
	for _, t := range topics {
		res.Processed++
		_, err := a.Add(ctx, t.Name, t.Description)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, leitner.ErrAlreadyExists), errors.Is(err, leitner.ErrInvalidName),
			errors.Is(err, leitner.ErrInvalidDescription):
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", t.Name, err))
		default:
			return res, err
		}
	}
	return res, nil
}
