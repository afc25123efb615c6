package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/deckmuse/deckmuse/pkg/domain/model"
)

// Formats holds CLI flags for per-format rule notes. The TOML file maps a
// format label to extra rules text, e.g.
//
//	brawl = "Remember the rules of Brawl: ..."
//	pauper = "Only commons are legal."
//
// File entries are merged over the built-in defaults; keys are matched
// case-insensitively against the request's format.
type Formats struct {
	path string
}

// Flags returns CLI flags for format rules configuration
func (x *Formats) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "format-rules",
			Usage:       "Path to a TOML file with per-format rule notes",
			Category:    "Formats",
			Sources:     cli.EnvVars("DECKMUSE_FORMAT_RULES"),
			Destination: &x.path,
		},
	}
}

func (x Formats) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the format rules, falling back to the defaults when no
// file is configured
func (x *Formats) Configure() (model.FormatRules, error) {
	rules := model.DefaultFormatRules()
	if x.path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrRulesNotFound, "cannot read format rules", goerr.V("path", x.path))
		}
		return nil, goerr.Wrap(err, "failed to read format rules", goerr.V("path", x.path))
	}

	var loaded map[string]string
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return nil, goerr.Wrap(err, "failed to parse format rules", goerr.V("path", x.path))
	}

	for format, text := range loaded {
		rules[strings.ToLower(format)] = text
	}

	return rules, nil
}
