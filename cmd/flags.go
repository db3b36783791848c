package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoice(def string, allowed ...string) *choiceValue {
	return &choiceValue{value: def, allowed: allowed}
}

func (c *choiceValue) String() string {
	return c.value
}

func (c *choiceValue) Set(raw string) error {
	v := strings.ToLower(strings.TrimSpace(raw))
	if !slices.Contains(c.allowed, v) {
		return fmt.Errorf("want one of %s", strings.Join(c.allowed, ", "))
	}
	c.value = v
	return nil
}

func (c *choiceValue) Type() string {
	return "string"
}

func choiceFlag(flags *pflag.FlagSet, name, usage string, c *choiceValue) {
	flags.Var(c, name, fmt.Sprintf("%s (%s)", usage, strings.Join(c.allowed, "|")))
}
