package commands

import (
	"context"
	"fmt"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	svc, _, cleanup, err := newService(root, g)
	if err != nil {
		return err
	}
	defer cleanup()

	removed, err := svc.Clean(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("removed output and %d cache entries\n", removed)
	return nil
}
