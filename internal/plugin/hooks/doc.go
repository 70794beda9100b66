// Package hooks contains the built-in lifecycle hooks.
package hooks

import (
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

// Register adds every built-in hook to reg.
func Register(reg *plugin.Registry) error {
	for _, register := range []func(*plugin.Registry) error{
		registerReadingTime,
		registerExternalLinks,
		registerBuildStamp,
		registerPageLog,
		registerScratch,
	} {
		if err := register(reg); err != nil {
			return err
		}
	}
	return nil
}
