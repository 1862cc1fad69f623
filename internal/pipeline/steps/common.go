package steps

import (
	"strings"

	"github.com/ternarybob/docworker/internal/config"
)

// externalsCfg holds the subprocess converter configuration (command, base
// args, timeout) the converter-backed step kinds need at render time. It is
// set once at startup via Configure, since the Factory signature only
// carries a Template and the step's own options — not the whole config.
var externalsCfg config.ExternalsConfig

// Configure wires the externals configuration into the step registry.
// Must be called once before any converter-backed step is built.
func Configure(cfg config.ExternalsConfig) {
	externalsCfg = cfg
}

// splitArgs splits a step option's free-form "args" value the way the
// source's shlex.split(metadata.get('args', '')) does for the simple,
// unquoted flag strings templates actually carry (e.g. "--toc --number-
// sections"). Quoted arguments are not supported; no template in the
// reference corpus needs them.
func splitArgs(raw string) []string {
	return strings.Fields(raw)
}
