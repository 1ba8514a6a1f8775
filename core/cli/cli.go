package cli

import (
	cliContext "github.com/aquarius4k/aquarius/core/cli/context"
)

// StudioCLI is the flag surface of the aquarius window.
type StudioCLI struct {
	cliContext.Context `embed:""`
	StudioCMD          `embed:""`
}

// DreamCLI is the flag surface of the toydream demo.
type DreamCLI struct {
	cliContext.Context `embed:""`
	DreamCMD           `embed:""`
}
