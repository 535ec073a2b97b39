package opts

import (
	"github.com/walteh/playsync/pkg/config"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config *config.Config
}
