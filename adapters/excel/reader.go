package excel

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"excelops/domain/core"
	"excelops/domain/table"
)

// candidate delimiters, in detection preference order
var csvDelimiters = []rune{',', ';', '\t', '|'}

const detectionSampleLines = 30

// Reader loads tabular files into datasets. Format is decided from the
// file extension: xlsx/xls via excelize (first sheet only), csv with
// delimiter auto-detection.
type Reader struct{}

// NewReader creates a tabular file reader
func NewReader() *Reader {
	return &Reader{}
}

// Read loads path into a dataset. The first row is the header; cells are
// trimmed and numeric-looking cells coerced.
func (r *Reader) Read(path string) (*table.Dataset, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err = readWorkbook(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFile, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	// A lone header row is a valid, zero-row dataset
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyFile, path)
	}
	return buildDataset(rows), nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrEmptyFile)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	log.Printf("[Reader] %s: read %d rows from sheet %q", path, len(rows), sheets[0])
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	delim, err := detectDelimiter(path)
	if err != nil {
		return nil, err
	}

	rows, err := parseCSV(path, delim)
	if err != nil {
		return nil, err
	}

	// A single-column parse usually means the wrong delimiter won
	// detection; retry the alternates before giving up.
	if len(rows) > 0 && len(rows[0]) == 1 {
		for _, alt := range csvDelimiters {
			if alt == delim {
				continue
			}
			retry, err := parseCSV(path, alt)
			if err == nil && len(retry) > 0 && len(retry[0]) > 1 {
				log.Printf("[Reader] %s: delimiter %q produced one column, using %q", path, delim, alt)
				return retry, nil
			}
		}
	}
	return rows, nil
}

func parseCSV(path string, delim rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(skipBOM(file))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	return rows, nil
}

// detectDelimiter picks the candidate with the highest occurrence count in
// the header line; ties and zero counts fall back to the candidate whose
// column count is most consistent over a 30-line sample.
func detectDelimiter(path string) (rune, error) {
	sample, err := sampleLines(path, detectionSampleLines)
	if err != nil {
		return 0, err
	}
	if len(sample) == 0 {
		return 0, fmt.Errorf("%w: %s", core.ErrEmptyFile, path)
	}

	header := sample[0]
	best, bestCount := ',', 0
	tie := false
	for _, d := range csvDelimiters {
		n := strings.Count(header, string(d))
		switch {
		case n > bestCount:
			best, bestCount, tie = d, n, false
		case n == bestCount && n > 0:
			tie = true
		}
	}
	if bestCount > 0 && !tie {
		return best, nil
	}
	return mostConsistentDelimiter(sample), nil
}

// mostConsistentDelimiter scores each candidate by how often the sample
// lines agree on a column count above one.
func mostConsistentDelimiter(sample []string) rune {
	best, bestScore := ',', -1
	for _, d := range csvDelimiters {
		counts := make(map[int]int)
		for _, line := range sample {
			cols := strings.Count(line, string(d)) + 1
			if cols > 1 {
				counts[cols]++
			}
		}
		score := 0
		for _, n := range counts {
			if n > score {
				score = n
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// skipBOM consumes a UTF-8 byte order mark when the stream starts with
// one. Excel prepends it to CSV exports and it would otherwise stick to
// the first header name.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		br.Discard(3)
	}
	return br
}

func sampleLines(path string, max int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(skipBOM(file))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() && len(lines) < max {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to sample CSV file: %w", err)
	}
	return lines, nil
}

// buildDataset converts raw string rows into a dataset: first row is the
// header (trimmed; blanks named Column N), remaining rows become cells.
func buildDataset(rows [][]string) *table.Dataset {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		headers[i] = h
	}

	d := table.New(headers...)
	for _, raw := range rows[1:] {
		vals := make([]table.Value, len(headers))
		for i := range headers {
			if i < len(raw) {
				vals[i] = table.Cell(raw[i])
			} else {
				vals[i] = table.Missing()
			}
		}
		d.Append(vals...)
	}
	return d
}
