package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/logging"
)

var log = logging.Component("source")

// Supported dataset formats.
const (
	FormatAuto    = "auto"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// DetectFormat resolves FormatAuto from the file extension.
func DetectFormat(path, format string) (string, error) {
	switch format {
	case FormatCSV, FormatParquet:
		return format, nil
	case FormatAuto, "":
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "extension of %s", path)
	}
}

// Open loads the dataset at path. Any read or parse failure, including an
// empty file, is a DataLoadError naming path.
func Open(path, format string) (*dataset.Store, error) {
	format, err := DetectFormat(path, format)
	if err != nil {
		return nil, err
	}

	var store *dataset.Store
	switch format {
	case FormatCSV:
		store, err = openCSV(path)
	case FormatParquet:
		store, err = openParquet(path)
	}
	if err != nil {
		var dle *errors.DataLoadError
		if errors.As(err, &dle) {
			dle.Source = path
			return nil, dle
		}
		return nil, errors.NewDataLoad(path, err)
	}

	log.Info("dataset loaded",
		"path", path,
		"format", format,
		"records", store.Len(),
		"sites", len(store.Sites()),
		"payload_min", store.Bounds().Min,
		"payload_max", store.Bounds().Max)

	return store, nil
}

func openCSV(path string) (*dataset.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return dataset.Load(rows)
}

func openParquet(path string) (*dataset.Store, error) {
	records, err := ReadParquet(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.ErrEmptyDataset
	}
	return dataset.FromRecords(records)
}
