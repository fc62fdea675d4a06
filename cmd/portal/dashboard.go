package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your profile and recommendations",
		Long: `Loads your profile and its recommendations. New users without a profile
are shown the profile editor instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if _, err := a.credential(); err != nil {
					return err
				}
				if regenerate {
					a.orch.StartFresh(cmd.Context())
				} else {
					a.orch.Start(cmd.Context())
				}
				a.printer.PrintView(a.orch.View())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Ask the backend for fresh recommendations instead of its cached set")
	return cmd
}

func newRegenerateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Generate fresh recommendations for your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if _, err := a.credential(); err != nil {
					return err
				}

				outcome, err := a.orch.Regenerate(cmd.Context())
				if err != nil {
					return err
				}
				if outcome.Err != nil {
					return fmt.Errorf("failed to regenerate recommendations: %w", outcome.Err)
				}
				a.printer.PrintRecommendations(outcome.Set)
				return nil
			})
		},
	}
}
