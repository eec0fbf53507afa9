package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func newKeysCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the effective key bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer s.close()

			tw, err := s.newWindow(1, nil, nil)
			if err != nil {
				return err
			}
			bindings := tw.KeyAssignments()

			width := 0
			chords := make([]string, len(bindings))
			for i, b := range bindings {
				chords[i] = b.Mods.String() + "+" + b.Key
				width = max(width, runewidth.StringWidth(chords[i]))
			}
			out := cmd.OutOrStdout()
			for i, b := range bindings {
				pad := strings.Repeat(" ", width-runewidth.StringWidth(chords[i]))
				fmt.Fprintf(out, "%s%s  %s\n", chords[i], pad, b.Assignment)
			}
			return nil
		},
	}
}
