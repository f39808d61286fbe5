package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"nutricalc/internal/nutrition"
)

var columns = []string{"name", "calories", "protein", "fat", "carbs"}

// ingredientRow is one parsed table line. Line is 1-based in the source.
type ingredientRow struct {
	Line   int
	Name   string
	Macros nutrition.Macros
}

func readRows(path string) ([]ingredientRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractTextFromPDF(data)
		if err != nil {
			return nil, fmt.Errorf("extract pdf text: %w", err)
		}
		return parsePlainTable(text)
	}
	return parseCSV(bytes.NewReader(data))
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// parseCSV reads a CSV table whose header names the columns in any order.
func parseCSV(r io.Reader) ([]ingredientRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, err
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []ingredientRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		values := make([]string, len(columns))
		for c, name := range columns {
			if pos := index[name]; pos < len(record) {
				values[c] = record[pos]
			}
		}
		row, err := buildRow(line, values)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parsePlainTable reads text extracted from a PDF. Each line is either comma
// separated or a name followed by four whitespace separated numbers. Header
// and unrecognised lines are ignored.
func parsePlainTable(text string) ([]ingredientRow, error) {
	var rows []ingredientRow
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var values []string
		if strings.Contains(line, ",") {
			values = strings.Split(line, ",")
		} else {
			fields := strings.Fields(line)
			if len(fields) < len(columns) {
				continue
			}
			split := len(fields) - (len(columns) - 1)
			values = append([]string{strings.Join(fields[:split], " ")}, fields[split:]...)
		}
		if len(values) != len(columns) || isHeader(values) {
			continue
		}

		row, err := buildRow(i+1, values)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no ingredient rows found")
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for pos, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = pos
	}
	for _, name := range columns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
	}
	return index, nil
}

func isHeader(values []string) bool {
	return strings.EqualFold(strings.TrimSpace(values[0]), columns[0]) &&
		strings.EqualFold(strings.TrimSpace(values[1]), columns[1])
}

func blank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// buildRow converts the ordered column values of one line. Negative or
// non-numeric values are rejected.
func buildRow(line int, values []string) (ingredientRow, error) {
	name := strings.TrimSpace(values[0])
	if name == "" {
		return ingredientRow{}, fmt.Errorf("line %d: name is empty", line)
	}
	if utf8.RuneCountInString(name) > 100 {
		return ingredientRow{}, fmt.Errorf("line %d: name longer than 100 characters", line)
	}

	numbers := make([]float64, len(columns)-1)
	for i, raw := range values[1:] {
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return ingredientRow{}, fmt.Errorf("line %d: %s: %w", line, columns[i+1], err)
		}
		if value < 0 {
			return ingredientRow{}, fmt.Errorf("line %d: %s must not be negative", line, columns[i+1])
		}
		numbers[i] = value
	}

	return ingredientRow{
		Line: line,
		Name: name,
		Macros: nutrition.Macros{
			Calories: numbers[0],
			Protein:  numbers[1],
			Fat:      numbers[2],
			Carbs:    numbers[3],
		},
	}, nil
}
