package commands

import (
	"context"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	JSON bool `help:"Print the report as JSON"`
}

func (v *VerifyCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	svc, _, cleanup, err := newService(root, g)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := svc.Verify(ctx)
	if err != nil {
		return err
	}
	if err := printReport(os.Stdout, report, v.JSON); err != nil {
		return err
	}
	if len(report.Drift) > 0 {
		return build.ErrDrift
	}
	return nil
}
