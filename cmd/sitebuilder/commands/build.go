package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	JSON bool `help:"Print the build report as JSON"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	svc, _, cleanup, err := newService(root, g)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := svc.Build(ctx)
	if report != nil {
		if perr := printReport(os.Stdout, report, b.JSON); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if !report.OK() {
		return build.ErrTasksFailed
	}
	return nil
}

func printReport(w io.Writer, r *build.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	rev := r.Revision.Short()
	if rev == "" {
		rev = "-"
	}
	fmt.Fprintf(w, "build %s (%s) %s in %s\n", r.BuildID, rev, r.Status, r.Duration.Round(1e6))
	fmt.Fprintf(w, "  articles %d, changed %d, rendered %d, cached %d, unchanged %d, deleted %d, failed %d, index %s\n",
		r.Articles, r.Changed, r.Rendered, r.Skipped, r.Unchanged, r.Deleted, r.Failed, r.Index)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s [%s] %s\n", e.Task, e.Kind, e.Message)
	}
	for _, d := range r.Drift {
		fmt.Fprintf(w, "  drift %s\n%s", d.Path, d.Diff)
	}
	return nil
}
