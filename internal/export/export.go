// Package export serializes the generated table to a single flat file.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lumina/upi-synth/internal/domain"
)

// ErrOutputDirMissing is returned when the output file's directory does not
// exist. Directories are never created implicitly.
var ErrOutputDirMissing = errors.New("output directory does not exist")

// ErrUnknownFormat is returned for a format other than csv or json.
var ErrUnknownFormat = errors.New("unknown output format")

// TimestampLayout is the timestamp column format.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Writer encodes rows to w.
type Writer interface {
	Write(w io.Writer, rows []domain.Transaction) error
}

// ForFormat returns the writer for "csv" or "json".
func ForFormat(format string) (Writer, error) {
	switch format {
	case "csv":
		return CSVWriter{}, nil
	case "json":
		return JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes rows to path, replacing any existing file.
func WriteFile(path, format string, rows []domain.Transaction) error {
	enc, err := ForFormat(format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return fmt.Errorf("%w: %s", ErrOutputDirMissing, dir)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	if err := enc.Write(bw, rows); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// ─── CSV ──────────────────────────────────────────────────────────────────────

// CSVWriter writes a header row followed by one row per transaction. There
// is no index column.
type CSVWriter struct{}

func (CSVWriter) Write(w io.Writer, rows []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.Columns); err != nil {
		return err
	}

	record := make([]string, len(domain.Columns))
	for i := range rows {
		tx := &rows[i]
		record[0] = tx.TransactionID
		record[1] = tx.UserID
		record[2] = tx.Timestamp.Format(TimestampLayout)
		record[3] = tx.Amount.String()
		record[4] = tx.RecipientID
		record[5] = tx.TransactionType
		record[6] = tx.DeviceID
		record[7] = tx.Location
		record[8] = boolFlag(tx.IsFraud)
		record[9] = tx.FraudType
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

// JSONWriter writes an indented JSON array of transactions.
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, rows []domain.Transaction) error {
	if rows == nil {
		rows = []domain.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
