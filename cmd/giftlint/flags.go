package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dhamidi/giftlint/config"
	"github.com/dhamidi/giftlint/format"
)

// enumValue is a string flag restricted to a fixed set of values.
type enumValue struct {
	value   *string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(p *string, allowed ...string) *enumValue {
	return &enumValue{value: p, allowed: allowed}
}

func (e *enumValue) String() string {
	if e.value == nil {
		return ""
	}
	return *e.value
}

func (e *enumValue) Set(s string) error {
	if !slices.Contains(e.allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(e.allowed, ", "))
	}
	*e.value = s
	return nil
}

func (e *enumValue) Type() string {
	return strings.Join(e.allowed, "|")
}

// checkFlags are the flags shared by the commands that check documents.
// They override the config file only when given.
type checkFlags struct {
	format     string
	color      string
	limit      int
	radius     int
	workers    int
	lineEnding string
	wrap       int
}

func (f *checkFlags) register(flags *pflag.FlagSet) {
	flags.VarP(newEnumValue(&f.format, format.Names...), "format", "f", "output format")
	flags.Var(newEnumValue(&f.color, config.ColorModes...), "color", "colorize output")
	flags.Var(newEnumValue(&f.lineEnding, config.LineEndings...), "line-ending", "line ending offsets are computed with")
	flags.IntVar(&f.limit, "limit", 0, "re-parses allowed per question")
	flags.IntVar(&f.radius, "radius", 0, "how far to look for the offending character")
	flags.IntVarP(&f.workers, "workers", "j", 0, "questions checked concurrently")
	flags.IntVar(&f.wrap, "wrap", 0, "wrap messages at this width, 0 disables")
}

func (f *checkFlags) apply(flags *pflag.FlagSet, cfg config.Config) (config.Config, error) {
	if flags.Changed("format") {
		cfg.Format = f.format
	}
	if flags.Changed("color") {
		cfg.Color = f.color
	}
	if flags.Changed("line-ending") {
		cfg.LineEnding = f.lineEnding
	}
	if flags.Changed("limit") {
		cfg.IterationLimit = f.limit
	}
	if flags.Changed("radius") {
		cfg.SearchRadius = f.radius
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("wrap") {
		cfg.Wrap = f.wrap
	}
	return cfg, cfg.Validate()
}
