package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which model providers are configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd, opts)
			if err != nil {
				return err
			}
			defer shutdown(a)

			st := a.Router.Status()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "LLM features enabled: %t\n", st.Enabled)
			for _, p := range st.Providers {
				state := "missing API key"
				if p.Ready {
					state = "ready"
				}
				fmt.Fprintf(out, "  %-14s %-12s %s\n", p.DisplayName, p.Model, state)
			}
			if st.FallbackMode() {
				fmt.Fprintln(out, "Using fallback responses. Add API keys to .env or the secrets file.")
			}
			return nil
		},
	}
}
