package main

import (
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

var helpFlag = regexp.MustCompile(`--([a-z][a-z-]*)`)

func TestHelpExamplesUseRealFlags(t *testing.T) {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		for _, m := range helpFlag.FindAllStringSubmatch(c.Long, -1) {
			name := m[1]
			found := c.Flags().Lookup(name) != nil ||
				c.PersistentFlags().Lookup(name) != nil ||
				c.InheritedFlags().Lookup(name) != nil
			assert.True(t, found, "%q help mentions unknown flag --%s", c.CommandPath(), name)
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}
