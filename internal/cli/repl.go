package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/query"
	"github.com/xtxerr/launchboard/internal/render"
	"github.com/xtxerr/launchboard/internal/session"
	"github.com/xtxerr/launchboard/internal/validation"
)

// NewReplCommand creates the repl command.
func NewReplCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Explore the views interactively",
		Long: `Start an interactive session. Every selection change recomputes both views.

Commands:
  site <name|ALL>       select a launch site
  range <low> <high>    select a payload range in kg
  show                  print the current views again
  reset                 all sites, full payload range
  sites                 list launch sites
  stats                 recomputation statistics
  exit                  leave

When stdin is not a terminal, commands are read line by line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.openEngine()
			if err != nil {
				return err
			}

			r := newRepl(engine, cmd.OutOrStdout(), opts.Format)
			defer r.close()

			in := cmd.InOrStdin()
			if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				r.width = terminalWidth()
				r.runPrompt()
				return nil
			}
			return r.runLines(in)
		},
	}
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// repl holds one interactive session.
type repl struct {
	engine *query.Engine
	rec    *session.Recomputer
	out    io.Writer
	format string
	width  int
	sel    launch.Selection
}

func newRepl(engine *query.Engine, out io.Writer, format string) *repl {
	r := &repl{
		engine: engine,
		out:    out,
		format: format,
		sel:    launch.Selection{Site: launch.AllSites, Payload: engine.Store().Bounds().Range()},
	}
	r.rec = session.New(engine, r)
	return r
}

// Render implements session.Renderer.
func (r *repl) Render(seq uint64, v *query.View) {
	if r.width > 0 {
		fmt.Fprintln(r.out, strings.Repeat("─", r.width))
	}
	if err := writeView(r.out, r.format, v); err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

// RenderError implements session.Renderer.
func (r *repl) RenderError(seq uint64, sel launch.Selection, err error) {
	fmt.Fprintf(r.out, "error: %v\n", err)
}

// submit recomputes the current selection and waits for it to render.
func (r *repl) submit() {
	r.rec.Submit(r.sel)
	r.rec.Wait()
}

func (r *repl) close() {
	r.rec.Close()
}

// execute runs one command line. It returns true when the session should end.
func (r *repl) execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "exit", "quit":
		return true

	case "site":
		if len(args) == 0 {
			fmt.Fprintln(r.out, "usage: site <name|ALL>")
			return false
		}
		site, err := validation.NormalizeSite(strings.Join(args, " "))
		if err != nil {
			fmt.Fprintf(r.out, "site: %v\n", err)
			return false
		}
		if site != launch.AllSites && !r.engine.Store().HasSite(site) {
			fmt.Fprintf(r.out, "note: no launches recorded for %q\n", site)
		}
		r.sel.Site = site
		r.submit()

	case "range":
		if len(args) != 2 {
			fmt.Fprintln(r.out, "usage: range <low> <high>")
			return false
		}
		low, errLow := strconv.ParseFloat(args[0], 64)
		high, errHigh := strconv.ParseFloat(args[1], 64)
		if errLow != nil || errHigh != nil {
			fmt.Fprintln(r.out, "range: bounds must be numbers")
			return false
		}
		r.sel.Payload = launch.PayloadRange{Low: low, High: high}
		r.submit()

	case "show":
		if v, _ := r.rec.Latest(); v != nil {
			r.Render(0, v)
		} else {
			r.submit()
		}

	case "reset":
		r.sel = launch.Selection{Site: launch.AllSites, Payload: r.engine.Store().Bounds().Range()}
		r.submit()

	case "sites":
		store := r.engine.Store()
		render.Options(r.out, store.SiteOptions(), store.SliderMarks(0))

	case "stats":
		s := r.rec.Stats()
		fmt.Fprintf(r.out, "submitted %d, rendered %d, rejected %d, superseded %d\n",
			s.Submitted, s.Rendered, s.Errors, s.Superseded)

	case "help":
		fmt.Fprintln(r.out, "commands: site, range, show, reset, sites, stats, exit")

	default:
		fmt.Fprintf(r.out, "unknown command %q (try help)\n", cmd)
	}
	return false
}

// runLines executes commands read from in until EOF or exit.
func (r *repl) runLines(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if r.execute(sc.Text()) {
			return nil
		}
	}
	return sc.Err()
}

// runPrompt runs the interactive terminal prompt.
func (r *repl) runPrompt() {
	r.submit()

	quit := false
	p := prompt.New(
		func(line string) { quit = r.execute(line) },
		r.complete,
		prompt.OptionTitle("launchboard"),
		prompt.OptionLivePrefix(func() (string, bool) {
			return fmt.Sprintf("%s [%s–%s]> ", r.sel.Site,
				render.Mass(r.sel.Payload.Low), render.Mass(r.sel.Payload.High)), true
		}),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && quit
		}),
	)
	p.Run()
}

var replCommands = []prompt.Suggest{
	{Text: "site", Description: "select a launch site"},
	{Text: "range", Description: "select a payload range in kg"},
	{Text: "show", Description: "print the current views"},
	{Text: "reset", Description: "all sites, full payload range"},
	{Text: "sites", Description: "list launch sites"},
	{Text: "stats", Description: "recomputation statistics"},
	{Text: "exit", Description: "leave"},
}

func (r *repl) complete(d prompt.Document) []prompt.Suggest {
	before := d.TextBeforeCursor()
	if strings.HasPrefix(before, "site ") {
		suggests := []prompt.Suggest{{Text: launch.AllSites, Description: launch.AllSitesLabel}}
		for _, s := range r.engine.Store().Sites() {
			suggests = append(suggests, prompt.Suggest{Text: s})
		}
		return prompt.FilterHasPrefix(suggests, strings.TrimPrefix(before, "site "), true)
	}
	if strings.Contains(before, " ") {
		return nil
	}
	return prompt.FilterHasPrefix(replCommands, d.GetWordBeforeCursor(), true)
}
