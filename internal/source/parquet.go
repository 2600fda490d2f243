package source

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
)

// readBufferSize is the buffer used when reading snapshot pages.
const readBufferSize = 1024 * 1024

// Options configures the Parquet writer.
type Options struct {
	Compression CompressionType
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionGzip
)

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{Compression: CompressionZstd}
}

// ParseCompressionType parses a compression type string. An empty string
// means no compression; an unknown name is an ErrInvalidConfig.
func ParseCompressionType(s string) (CompressionType, error) {
	switch s {
	case "snappy":
		return CompressionSnappy, nil
	case "zstd":
		return CompressionZstd, nil
	case "gzip":
		return CompressionGzip, nil
	case "none", "":
		return CompressionNone, nil
	default:
		return CompressionNone, errors.NewValidation("compression",
			fmt.Sprintf("must be zstd, snappy, gzip or none, got %q", s))
	}
}

func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// LaunchRow is a launch record in Parquet format.
type LaunchRow struct {
	Site            string  `parquet:"site,zstd"`
	PayloadMassKg   float64 `parquet:"payload_mass_kg"`
	BoosterCategory string  `parquet:"booster_category,zstd"`
	Outcome         int32   `parquet:"outcome"`
	FlightNumber    *int32  `parquet:"flight_number,optional"`
}

// RecordToRow converts a Record to a LaunchRow. A flight number outside the
// int32 range is an ErrInvalidValue.
func RecordToRow(r *launch.Record) (LaunchRow, error) {
	row := LaunchRow{
		Site:            r.Site,
		PayloadMassKg:   r.PayloadMassKg,
		BoosterCategory: r.BoosterCategory,
		Outcome:         int32(r.Outcome.Numeric()),
	}
	if r.FlightNumber != nil {
		if *r.FlightNumber < math.MinInt32 || *r.FlightNumber > math.MaxInt32 {
			return LaunchRow{}, errors.NewInvalidValue("flight_number", *r.FlightNumber, "does not fit in int32")
		}
		n := int32(*r.FlightNumber)
		row.FlightNumber = &n
	}
	return row, nil
}

// RowToRecord converts a LaunchRow to a Record. The outcome is copied as is,
// so Record.Validate rejects values other than 0 and 1.
func RowToRecord(r *LaunchRow) launch.Record {
	rec := launch.Record{
		Site:            r.Site,
		PayloadMassKg:   r.PayloadMassKg,
		BoosterCategory: r.BoosterCategory,
		Outcome:         launch.Outcome(r.Outcome),
	}
	if r.FlightNumber != nil {
		rec.FlightNumber = launch.IntPtr(int(*r.FlightNumber))
	}
	return rec
}

// WriteParquet writes records to path, creating parent directories.
func WriteParquet(path string, records []launch.Record, opts Options) error {
	rows := make([]LaunchRow, len(records))
	for i := range records {
		row, err := RecordToRow(&records[i])
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		rows[i] = row
	}
	return writeRows(path, rows, opts)
}

func writeRows(path string, rows []LaunchRow, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	writer := parquet.NewGenericWriter[LaunchRow](f, parquet.Compression(getCompression(opts.Compression)))

	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

// ReadParquet reads every record from a snapshot written by WriteParquet.
func ReadParquet(path string) ([]launch.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	pf, err := parquet.OpenFile(f, info.Size(), parquet.ReadBufferSize(readBufferSize))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[LaunchRow](pf)
	defer reader.Close()

	rows := make([]LaunchRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && n < len(rows) {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	records := make([]launch.Record, n)
	for i := 0; i < n; i++ {
		records[i] = RowToRecord(&rows[i])
	}
	return records, nil
}
