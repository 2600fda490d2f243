package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/query"
	"github.com/xtxerr/launchboard/internal/server"
	"github.com/xtxerr/launchboard/internal/source"
	lbtesting "github.com/xtxerr/launchboard/internal/testing"
	"github.com/xtxerr/launchboard/internal/wire"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func scenarioDataset(t *testing.T) string {
	t.Helper()
	return lbtesting.WriteFile(t, t.TempDir(), "launches.csv", lbtesting.ScenarioCSV)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "sites", "query", "sql", "convert", "repl"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("command %s missing: %v", name, err)
		}
	}

	format := cmd.PersistentFlags().Lookup("format")
	if format == nil || format.DefValue != FormatText {
		t.Errorf("unexpected format flag %+v", format)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "", "sites", "--dataset", scenarioDataset(t), "--format", "xml")
	if GetExitCode(err) != ExitCommandError {
		t.Errorf("expected command error, got %v", err)
	}
}

func TestQuery_JSON(t *testing.T) {
	out, err := run(t, "", "query", "--dataset", scenarioDataset(t), "--format", "json", "--site", "SiteA", "--low", "0", "--high", "5000")
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	var v query.View
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := launch.SuccessAggregate{{Label: "failure", Count: 1}, {Label: "success", Count: 1}}
	if diff := cmp.Diff(want, v.Aggregate); diff != "" {
		t.Errorf("aggregate (-want +got):\n%s", diff)
	}
}

func TestQuery_DefaultBoundsAndText(t *testing.T) {
	out, err := run(t, "", "query", "--dataset", scenarioDataset(t))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(out, "Total Successful Launches by Site") || !strings.Contains(out, "500 – 3,000 kg") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestQuery_Protobuf(t *testing.T) {
	out, err := run(t, "", "query", "--dataset", scenarioDataset(t), "--format", "pb", "--low", "1000", "--high", "3000")
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	f, err := wire.NewReader(strings.NewReader(out)).ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(f.View.Projection) != 3 {
		t.Errorf("expected 3 points, got %d", len(f.View.Projection))
	}
}

func TestQuery_InfiniteBound(t *testing.T) {
	out, err := run(t, "", "query", "--dataset", scenarioDataset(t), "--format", "json", "--low=-Inf", "--high=2000")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var v query.View
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if v.Applied != (launch.PayloadRange{Low: 500, High: 2000}) || len(v.Projection) != 3 {
		t.Errorf("applied=%+v points=%d", v.Applied, len(v.Projection))
	}
}

func TestQuery_InvalidRange(t *testing.T) {
	_, err := run(t, "", "query", "--dataset", scenarioDataset(t), "--low", "3000", "--high", "100")
	if !errors.IsInvalidRange(err) {
		t.Errorf("expected InvalidRangeError, got %v", err)
	}
	if GetExitCode(err) != ExitCommandError {
		t.Errorf("exit code = %d", GetExitCode(err))
	}
}

func TestQuery_Remote(t *testing.T) {
	store, err := dataset.FromRecords(lbtesting.ScenarioRecords())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	ts := httptest.NewServer(server.New(server.DefaultConfig(), query.NewEngine(store)).Handler())
	defer ts.Close()

	out, err := run(t, "", "query", "--dataset", scenarioDataset(t), "--remote", ts.URL, "--format", "json", "--site", "SiteB")
	if err != nil {
		t.Fatalf("query --remote: %v", err)
	}
	var v query.View
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := launch.SuccessAggregate{{Label: "success", Count: 2}}
	if diff := cmp.Diff(want, v.Aggregate); diff != "" {
		t.Errorf("aggregate (-want +got):\n%s", diff)
	}

	_, err = run(t, "", "query", "--dataset", scenarioDataset(t), "--remote", ts.URL, "--low", "3000", "--high", "100")
	if !errors.IsInvalidRange(err) {
		t.Errorf("expected invalid range across the wire, got %v", err)
	}
}

func TestDataLoadFailure(t *testing.T) {
	path := lbtesting.WriteFile(t, t.TempDir(), "empty.csv", "Launch Site,class,Payload Mass (kg),Booster Version Category\n")

	for _, args := range [][]string{
		{"query", "--dataset", path},
		{"sites", "--dataset", path},
		{"serve", "--dataset", path, "--listen", "127.0.0.1:0"},
	} {
		_, err := run(t, "", args...)
		if !errors.IsDataLoad(err) {
			t.Errorf("%v: expected DataLoadError, got %v", args, err)
		}
		if GetExitCode(err) != ExitCommandError {
			t.Errorf("%v: exit code = %d", args, GetExitCode(err))
		}
	}
}

func TestSites(t *testing.T) {
	out, err := run(t, "", "sites", "--dataset", scenarioDataset(t), "--format", "json")
	if err != nil {
		t.Fatalf("sites: %v", err)
	}

	var res SitesResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Sites) != 3 || res.Sites[0].Value != launch.AllSites || res.Records != 4 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestConvertAndLoadParquet(t *testing.T) {
	csvPath := scenarioDataset(t)
	pqPath := filepath.Join(t.TempDir(), "launches.parquet")

	out, err := run(t, "", "convert", csvPath, pqPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "wrote 4 records") {
		t.Errorf("unexpected output %q", out)
	}

	records, err := source.ReadParquet(pqPath)
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if diff := cmp.Diff(lbtesting.ScenarioRecords(), records); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}

	out, err = run(t, "", "query", "--dataset", pqPath, "--format", "json")
	if err != nil {
		t.Fatalf("query parquet: %v", err)
	}
	if !strings.Contains(out, `"SiteB"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConvert_UnknownCompression(t *testing.T) {
	pqPath := filepath.Join(t.TempDir(), "launches.parquet")

	_, err := run(t, "", "convert", scenarioDataset(t), pqPath, "--compression", "lzma")
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if GetExitCode(err) != ExitCommandError {
		t.Errorf("exit code = %d", GetExitCode(err))
	}
}

func TestSQL(t *testing.T) {
	ds := scenarioDataset(t)

	out, err := run(t, "", "sql", "--dataset", ds, "--format", "json",
		"SELECT site, count(*) AS n FROM launches WHERE outcome = 1 GROUP BY site ORDER BY site")
	if err != nil {
		t.Fatalf("sql: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rows) != 2 || rows[0]["site"] != "SiteA" || rows[1]["n"] != float64(2) {
		t.Errorf("unexpected rows %v", rows)
	}

	out, err = run(t, "", "sql", "--dataset", ds, "--check")
	if err != nil {
		t.Fatalf("sql --check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "0 mismatches") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := run(t, "", "sql", "--dataset", ds); GetExitCode(err) != ExitCommandError {
		t.Errorf("sql without query: expected command error, got %v", err)
	}
}

func TestSQL_Disabled(t *testing.T) {
	t.Setenv("LAUNCHBOARD_SQL_ENABLED", "false")

	_, err := run(t, "", "sql", "--dataset", scenarioDataset(t), "--check")
	if !errors.Is(err, errors.ErrSQLViewUnavailable) {
		t.Errorf("expected ErrSQLViewUnavailable, got %v", err)
	}
}

func TestRepl_Lines(t *testing.T) {
	script := strings.Join([]string{
		"site SiteA",
		"range 0 5000",
		"range 5000 0",
		"range a b",
		"site SiteC",
		"reset",
		"stats",
		"bogus",
		"exit",
		"site SiteB",
	}, "\n")

	out, err := run(t, script, "repl", "--dataset", scenarioDataset(t))
	if err != nil {
		t.Fatalf("repl: %v", err)
	}

	for _, want := range []string{
		"Success vs Failure for SiteA",
		"error: invalid payload range",
		"bounds must be numbers",
		`no launches recorded for "SiteC"`,
		"Total Successful Launches by Site",
		"submitted 5, rendered 4, rejected 1",
		`unknown command "bogus"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Success vs Failure for SiteB") {
		t.Error("commands after exit must not run")
	}
}

func TestParitySelections(t *testing.T) {
	store, err := source.Open(scenarioDataset(t), source.FormatAuto)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	sels := paritySelections(store, 1000)
	// 3 site options x (full range + windows starting at 500, 1500, 2500)
	if len(sels) != 12 {
		t.Errorf("expected 12 selections, got %d", len(sels))
	}
}
