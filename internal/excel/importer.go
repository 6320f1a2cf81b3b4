// Package excel imports vocabulary words and structures in bulk from
// spreadsheet files.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lingoleap/internal/database"
	"github.com/example/lingoleap/pkg/models"
)

// ImportConfig defines the import configuration. Word files carry
// word / part of speech / definition columns; structure files carry
// structure / category / example columns, in that order.
type ImportConfig struct {
	FilePath   string // Path to the Excel or CSV file
	SheetName  string // Name of the sheet to import (Excel only)
	SkipHeader bool   // Skip the first row
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(filePath string) ImportConfig {
	return ImportConfig{
		FilePath:   filePath,
		SheetName:  "Sheet1",
		SkipHeader: true,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportWords imports vocabulary words from an Excel or CSV file. New words
// start at ladder level 0 and are due immediately.
func ImportWords(config ImportConfig) (*ImportResult, error) {
	repo := database.NewVocabularyRepository()
	return importRows(config, func(row []string) error {
		if len(row) < 1 || strings.TrimSpace(row[0]) == "" {
			return errSkipRow
		}
		word := models.VocabularyWord{
			Word:         strings.TrimSpace(row[0]),
			PartOfSpeech: cell(row, 1),
			Definition:   cell(row, 2),
		}
		return repo.Create(&word)
	})
}

// ImportStructures imports structures from an Excel or CSV file
func ImportStructures(config ImportConfig) (*ImportResult, error) {
	repo := database.NewStructureRepository()
	return importRows(config, func(row []string) error {
		if len(row) < 1 || strings.TrimSpace(row[0]) == "" {
			return errSkipRow
		}
		s := models.Structure{
			Structure: strings.TrimSpace(row[0]),
			Category:  cell(row, 1),
			Example:   cell(row, 2),
		}
		return repo.Create(&s)
	})
}

// errSkipRow marks a row that should be counted as skipped, not failed
var errSkipRow = fmt.Errorf("skip row")

// importRows reads the rows of the configured file and feeds them to insert
func importRows(config ImportConfig, insert func(row []string) error) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if config.SkipHeader && i == 0 {
			continue
		}
		result.TotalProcessed++
		if err := insert(row); err != nil {
			if err == errSkipRow {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

// readRows loads the file's rows, dispatching on the file extension
func readRows(config ImportConfig) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return readCSV(config.FilePath)
	}
	return readExcel(config)
}

func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// cell returns a trimmed column value, tolerating short rows
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
