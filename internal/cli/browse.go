package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"raffledash/internal/debounce"
	"raffledash/internal/raffle"
	"raffledash/internal/view"
)

const browseHelp = `Commands:
  start <date>       only raffles starting at or after date
  end <date>         only raffles starting at or before date
  creator <text>     creator address substring
  minFloor <price>   minimum floor price
  clear [field]      clear one filter, or all of them
  show               apply pending edits now
  help               this text
  quit               leave`

// browseFields maps accepted field spellings to query parameter names
var browseFields = map[string]string{
	"start":     raffle.ParamStart,
	"end":       raffle.ParamEnd,
	"creator":   raffle.ParamCreator,
	"minfloor":  raffle.ParamMinFloor,
	"min-floor": raffle.ParamMinFloor,
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Filter raffles interactively",
		Long: `Fetch the raffle set once and filter it interactively.

Each line read from stdin edits one filter. The list is re-derived once
edits stop arriving for the debounce window ($DEBOUNCE, 300ms by default),
so a burst of edits renders once. Type "help" for the commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, rootOpts)
		},
	}
}

// lockedWriter serializes renders from the debounce timer with direct output
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) print(f func(w io.Writer)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(l.w)
}

func runBrowse(cmd *cobra.Command, opts *RootOptions) error {
	cfg, snap, err := fetchSnapshot(cmd, opts)
	if err != nil {
		return err
	}

	out := &lockedWriter{w: cmd.OutOrStdout()}
	render := func(res raffle.Result) {
		out.print(func(w io.Writer) {
			fmt.Fprintf(w, "criteria: %s\n", describeCriteria(res.Criteria))
			writeResult(w, res)
			fmt.Fprintln(w)
		})
	}

	session := view.NewSession(snap, debounce.New(cfg.Debounce), render)
	defer session.Close()
	render(session.Result())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		field, value, _ := strings.Cut(line, " ")
		value = strings.TrimSpace(value)

		switch strings.ToLower(field) {
		case "quit", "exit":
			return flush(session)
		case "help":
			out.print(func(w io.Writer) { fmt.Fprintln(w, browseHelp) })
		case "show":
			session.Apply(session.Criteria())
		case "clear":
			if value == "" {
				session.Update(raffle.Criteria{})
				continue
			}
			next, err := editCriteria(session.Criteria(), value, "")
			if err != nil {
				out.print(func(w io.Writer) { fmt.Fprintf(w, "error: %v\n", err) })
				continue
			}
			session.Update(next)
		default:
			next, err := editCriteria(session.Criteria(), field, value)
			if err != nil {
				out.print(func(w io.Writer) { fmt.Fprintf(w, "error: %v\n", err) })
				continue
			}
			session.Update(next)
		}
	}
	if err := scanner.Err(); err != nil {
		return unavailable("failed to read input", err)
	}
	return flush(session)
}

// flush renders edits still waiting for the debounce window
func flush(s *view.Session) error {
	if s.Pending() {
		s.Apply(s.Criteria())
	}
	return nil
}

// editCriteria sets one field of c; an empty value clears it
func editCriteria(c raffle.Criteria, field, value string) (raffle.Criteria, error) {
	param, ok := browseFields[strings.ToLower(field)]
	if !ok {
		return c, fmt.Errorf("unknown field %q, type help for the commands", field)
	}

	q := c.Values()
	if value == "" {
		q.Del(param)
	} else {
		q.Set(param, value)
	}
	return raffle.ParseCriteria(q)
}
