// Package dataset holds the immutable in-memory table of launch records and
// the views derived from it at load time.
//
// A Store is built once by Load or FromRecords and never mutated afterwards;
// it is safe for concurrent readers without locking.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/logging"
)

var log = logging.Component("dataset")

// Canonical column names.
const (
	ColumnSite            = "site"
	ColumnPayloadMassKg   = "payloadMassKg"
	ColumnBoosterCategory = "boosterCategory"
	ColumnOutcome         = "outcome"
	ColumnFlightNumber    = "flightNumber"
)

// columnAliases maps each canonical column to the headers accepted for it.
// The aliases cover the headers of the published SpaceX launch CSV.
var columnAliases = map[string][]string{
	ColumnSite:            {ColumnSite, "Launch Site", "launch_site"},
	ColumnPayloadMassKg:   {ColumnPayloadMassKg, "Payload Mass (kg)", "payload_mass_kg"},
	ColumnBoosterCategory: {ColumnBoosterCategory, "Booster Version Category", "booster_category"},
	ColumnOutcome:         {ColumnOutcome, "class"},
	ColumnFlightNumber:    {ColumnFlightNumber, "Flight Number", "flight_number"},
}

// RawRow is one untyped source row keyed by column header.
type RawRow map[string]string

// lookup returns the value of a canonical column, trying every alias.
func (r RawRow) lookup(column string) (string, bool) {
	for _, name := range columnAliases[column] {
		if v, ok := r[name]; ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// Store is the read-only launch dataset.
type Store struct {
	records []launch.Record
	sites   []string
	siteSet map[string]struct{}
	bounds  launch.Bounds
}

// Load builds a Store from raw rows, in input order.
// It fails with a DataLoadError if rows is empty or any row is malformed;
// every malformed row is reported.
func Load(rows []RawRow) (*Store, error) {
	if len(rows) == 0 {
		return nil, errors.NewDataLoad("rows", errors.ErrEmptyDataset)
	}

	errs := errors.NewValidationErrors()
	records := make([]launch.Record, 0, len(rows))

	for i, row := range rows {
		rec, err := parseRow(row)
		if err != nil {
			errs.Add(errors.Wrapf(err, "row %d", i+1))
			continue
		}
		records = append(records, rec)
	}

	if err := errs.Err(); err != nil {
		return nil, errors.NewDataLoad("rows", err)
	}

	return build(records), nil
}

// FromRecords builds a Store from already-typed records, applying the same
// validation as Load.
func FromRecords(records []launch.Record) (*Store, error) {
	if len(records) == 0 {
		return nil, errors.NewDataLoad("records", errors.ErrEmptyDataset)
	}

	errs := errors.NewValidationErrors()
	for i := range records {
		if err := records[i].Validate(); err != nil {
			errs.Add(fmt.Errorf("row %d: %v: %w", i+1, err, errors.ErrInvalidValue))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, errors.NewDataLoad("records", err)
	}

	owned := make([]launch.Record, len(records))
	copy(owned, records)
	return build(owned), nil
}

// parseRow converts one raw row into a Record.
func parseRow(row RawRow) (launch.Record, error) {
	var rec launch.Record
	errs := errors.NewValidationErrors()

	site, ok := row.lookup(ColumnSite)
	switch {
	case !ok:
		errs.AddMissing(ColumnSite)
	case site == "":
		errs.Add(errors.NewInvalidValue(ColumnSite, site, "cannot be empty"))
	default:
		rec.Site = site
	}

	payload, ok := row.lookup(ColumnPayloadMassKg)
	if !ok || payload == "" {
		errs.AddMissing(ColumnPayloadMassKg)
	} else if v, err := strconv.ParseFloat(payload, 64); err != nil {
		errs.Add(errors.NewInvalidValue(ColumnPayloadMassKg, payload, "not a number"))
	} else if math.IsNaN(v) || math.IsInf(v, 0) {
		errs.Add(errors.NewInvalidValue(ColumnPayloadMassKg, payload, "not finite"))
	} else if v < 0 {
		errs.Add(errors.NewInvalidValue(ColumnPayloadMassKg, payload, "negative"))
	} else {
		rec.PayloadMassKg = v
	}

	booster, ok := row.lookup(ColumnBoosterCategory)
	if !ok {
		errs.AddMissing(ColumnBoosterCategory)
	} else {
		rec.BoosterCategory = booster
	}

	outcome, ok := row.lookup(ColumnOutcome)
	if !ok || outcome == "" {
		errs.AddMissing(ColumnOutcome)
	} else if o, err := launch.ParseOutcome(outcome); err != nil {
		errs.Add(errors.NewInvalidValue(ColumnOutcome, outcome, "expected 1/0"))
	} else {
		rec.Outcome = o
	}

	if flight, ok := row.lookup(ColumnFlightNumber); ok && flight != "" {
		n, err := parseFlightNumber(flight)
		if err != nil {
			errs.Add(errors.NewInvalidValue(ColumnFlightNumber, flight, "not an integer"))
		} else {
			rec.FlightNumber = launch.IntPtr(n)
		}
	}

	return rec, errs.Err()
}

// parseFlightNumber accepts "12" and the float form "12.0" some exports use.
func parseFlightNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

// build derives sites and bounds exactly once.
func build(records []launch.Record) *Store {
	s := &Store{
		records: records,
		siteSet: make(map[string]struct{}),
		bounds: launch.Bounds{
			Min: records[0].PayloadMassKg,
			Max: records[0].PayloadMassKg,
		},
	}

	for i := range records {
		r := &records[i]
		if _, seen := s.siteSet[r.Site]; !seen {
			s.siteSet[r.Site] = struct{}{}
			s.sites = append(s.sites, r.Site)
		}
		if r.PayloadMassKg < s.bounds.Min {
			s.bounds.Min = r.PayloadMassKg
		}
		if r.PayloadMassKg > s.bounds.Max {
			s.bounds.Max = r.PayloadMassKg
		}
	}
	sort.Strings(s.sites)

	log.Debug("dataset loaded",
		"records", len(records),
		"sites", len(s.sites),
		"payload_min", s.bounds.Min,
		"payload_max", s.bounds.Max)

	return s
}

// Records returns the records in load order. Callers must not modify the slice.
func (s *Store) Records() []launch.Record {
	return s.records
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Sites returns the distinct sites sorted ascending. The AllSites sentinel is
// never part of this list.
func (s *Store) Sites() []string {
	out := make([]string, len(s.sites))
	copy(out, s.sites)
	return out
}

// HasSite reports whether site occurs in the dataset.
func (s *Store) HasSite(site string) bool {
	_, ok := s.siteSet[site]
	return ok
}

// Bounds returns the payload (min, max). Min == Max when all payloads are equal.
func (s *Store) Bounds() launch.Bounds {
	return s.bounds
}
