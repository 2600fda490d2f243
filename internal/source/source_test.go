package source

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
	lbtesting "github.com/xtxerr/launchboard/internal/testing"
)

func TestReadCSV_Scenario(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(lbtesting.ScenarioCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0]["Launch Site"] != "SiteA" || rows[3]["Payload Mass (kg)"] != "3000.0" {
		t.Errorf("unexpected rows %v", rows)
	}
	if _, ok := rows[0][""]; ok {
		t.Error("unnamed index column should be dropped")
	}

	store, err := dataset.Load(rows)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(lbtesting.ScenarioRecords(), store.Records()); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
}

func TestReadCSV_ByteOrderMark(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("\ufeffsite,payloadMassKg,boosterCategory,outcome\nX,1,FT,1\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if rows[0]["site"] != "X" {
		t.Errorf("BOM not stripped from header: %v", rows[0])
	}
}

func TestReadCSV_Errors(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, errors.ErrEmptyDataset) {
		t.Errorf("empty input: expected ErrEmptyDataset, got %v", err)
	}

	_, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n1,2\n"))
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Errorf("expected field count error on row 2, got %v", err)
	}
}

func TestOpen_CSV(t *testing.T) {
	path := lbtesting.WriteFile(t, t.TempDir(), "launches.csv", lbtesting.ScenarioCSV)

	store, err := Open(path, FormatAuto)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Len() != 4 {
		t.Errorf("expected 4 records, got %d", store.Len())
	}
	if diff := cmp.Diff([]string{"SiteA", "SiteB"}, store.Sites()); diff != "" {
		t.Errorf("sites (-want +got):\n%s", diff)
	}
}

func TestOpen_DataLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"header only", "Launch Site,class,Payload Mass (kg),Booster Version Category\n"},
		{"empty file", ""},
		{"bad payload", "Launch Site,class,Payload Mass (kg),Booster Version Category\nX,1,heavy,FT\n"},
		{"ragged", "Launch Site,class\nX,1,extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := lbtesting.WriteFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".csv", tt.content)

			_, err := Open(path, FormatCSV)
			if !errors.IsDataLoad(err) {
				t.Fatalf("expected DataLoadError, got %v", err)
			}
			var dle *errors.DataLoadError
			if !errors.As(err, &dle) || dle.Source != path {
				t.Errorf("expected source %s, got %v", path, err)
			}
		})
	}

	if _, err := Open(filepath.Join(dir, "missing.csv"), FormatAuto); !errors.IsDataLoad(err) {
		t.Errorf("missing file: expected DataLoadError, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path, format, want string
		wantErr            bool
	}{
		{"a.csv", FormatAuto, FormatCSV, false},
		{"a.CSV", "", FormatCSV, false},
		{"a.parquet", FormatAuto, FormatParquet, false},
		{"a.data", FormatCSV, FormatCSV, false},
		{"a.xlsx", FormatAuto, "", true},
		{"a.csv", "xml", "", true},
	}

	for _, tt := range tests {
		got, err := DetectFormat(tt.path, tt.format)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrUnsupportedFormat) {
				t.Errorf("DetectFormat(%q, %q): expected ErrUnsupportedFormat, got %v", tt.path, tt.format, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %q, %v; want %q", tt.path, tt.format, got, err, tt.want)
		}
	}
}

func TestParquetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	records := lbtesting.ScenarioRecords()
	records = append(records, launch.Record{
		Site: "SiteC", PayloadMassKg: 0, BoosterCategory: "B5", Outcome: launch.Failure,
	})

	for _, comp := range []string{"zstd", "snappy", "none"} {
		t.Run(comp, func(t *testing.T) {
			path := filepath.Join(dir, comp, "launches.parquet")
			compression, err := ParseCompressionType(comp)
			if err != nil {
				t.Fatalf("ParseCompressionType(%q): %v", comp, err)
			}
			if err := WriteParquet(path, records, Options{Compression: compression}); err != nil {
				t.Fatalf("WriteParquet: %v", err)
			}

			got, err := ReadParquet(path)
			if err != nil {
				t.Fatalf("ReadParquet: %v", err)
			}
			if diff := cmp.Diff(records, got); diff != "" {
				t.Errorf("round trip (-want +got):\n%s", diff)
			}

			store, err := Open(path, FormatAuto)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if store.Len() != len(records) {
				t.Errorf("expected %d records, got %d", len(records), store.Len())
			}
		})
	}
}

func TestOpen_EmptyParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if err := WriteParquet(path, nil, DefaultOptions()); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	if _, err := Open(path, FormatAuto); !errors.Is(err, errors.ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestParseCompressionType_Unknown(t *testing.T) {
	if _, err := ParseCompressionType("lzma"); !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if ct, err := ParseCompressionType(""); err != nil || ct != CompressionNone {
		t.Errorf(`ParseCompressionType("") = %v, %v; want none`, ct, err)
	}
}

func TestOpen_ParquetOutcomeOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.parquet")
	rows := []LaunchRow{
		{Site: "SiteA", PayloadMassKg: 500, BoosterCategory: "v1.0", Outcome: 1},
		{Site: "SiteA", PayloadMassKg: 900, BoosterCategory: "v1.0", Outcome: 2},
	}
	if err := writeRows(path, rows, DefaultOptions()); err != nil {
		t.Fatalf("writeRows: %v", err)
	}

	_, err := Open(path, FormatAuto)
	if !errors.IsDataLoad(err) {
		t.Fatalf("expected DataLoadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("error should name row 2: %v", err)
	}
}

func TestWriteParquet_FlightNumberOverflow(t *testing.T) {
	rec := lbtesting.ScenarioRecords()[0]
	rec.FlightNumber = launch.IntPtr(math.MaxInt32 + 1)

	err := WriteParquet(filepath.Join(t.TempDir(), "x.parquet"), []launch.Record{rec}, DefaultOptions())
	if !errors.Is(err, errors.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}
