package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xtxerr/launchboard/internal/launch"
)

// ScenarioRecords returns the four-record reference dataset:
//
//	SiteA  500kg success
//	SiteA 1500kg failure
//	SiteB 2000kg success
//	SiteB 3000kg success
func ScenarioRecords() []launch.Record {
	return []launch.Record{
		{Site: "SiteA", PayloadMassKg: 500, BoosterCategory: "v1.0", Outcome: launch.Success, FlightNumber: launch.IntPtr(1)},
		{Site: "SiteA", PayloadMassKg: 1500, BoosterCategory: "v1.1", Outcome: launch.Failure, FlightNumber: launch.IntPtr(2)},
		{Site: "SiteB", PayloadMassKg: 2000, BoosterCategory: "FT", Outcome: launch.Success, FlightNumber: launch.IntPtr(3)},
		{Site: "SiteB", PayloadMassKg: 3000, BoosterCategory: "FT", Outcome: launch.Success, FlightNumber: launch.IntPtr(4)},
	}
}

// ScenarioRows returns ScenarioRecords as raw rows using the SpaceX CSV headers.
func ScenarioRows() []map[string]string {
	recs := ScenarioRecords()
	rows := make([]map[string]string, len(recs))
	for i, r := range recs {
		rows[i] = map[string]string{
			"Flight Number":            fmt.Sprint(*r.FlightNumber),
			"Launch Site":              r.Site,
			"class":                    fmt.Sprint(r.Outcome.Numeric()),
			"Payload Mass (kg)":        fmt.Sprintf("%.1f", r.PayloadMassKg),
			"Booster Version Category": r.BoosterCategory,
		}
	}
	return rows
}

// ScenarioCSV is ScenarioRecords in the layout of spacex_launch_dash.csv.
const ScenarioCSV = `,Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
0,1,SiteA,1,500.0,F9 v1.0  B0003,v1.0
1,2,SiteA,0,1500.0,F9 v1.1  B1003,v1.1
2,3,SiteB,1,2000.0,F9 FT B1021.1,FT
3,4,SiteB,1,3000.0,F9 FT B1022,FT
`

// WriteFile writes content under dir and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// GenerateRecords returns n deterministic records spread over the given sites,
// for benchmarks and property tests.
func GenerateRecords(n int, sites ...string) []launch.Record {
	if len(sites) == 0 {
		sites = []string{"CCAFS LC-40", "CCAFS SLC-40", "KSC LC-39A", "VAFB SLC-4E"}
	}
	boosters := []string{"v1.0", "v1.1", "FT", "B4", "B5"}
	recs := make([]launch.Record, n)
	for i := range recs {
		outcome := launch.Failure
		if (i*7)%10 < 6 {
			outcome = launch.Success
		}
		recs[i] = launch.Record{
			Site:            sites[i%len(sites)],
			PayloadMassKg:   float64((i * 317) % 9600),
			BoosterCategory: boosters[(i/3)%len(boosters)],
			Outcome:         outcome,
			FlightNumber:    launch.IntPtr(i + 1),
		}
	}
	return recs
}

// Lines splits s into non-empty trimmed lines.
func Lines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
