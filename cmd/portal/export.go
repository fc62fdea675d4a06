package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jonathan/career-portal/internal/api"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// exportFileName is the name the backend suggests for downloads.
func exportFileName(format string) string {
	return "exported_data." + format
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		formats []string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download your account data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range formats {
				if !slices.Contains(api.ExportFormats, f) {
					return fmt.Errorf("unsupported export format %q (want one of %v)", f, api.ExportFormats)
				}
			}

			return withApp(cmd, opts, func(a *app) error {
				credential, err := a.credential()
				if err != nil {
					return err
				}
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}

				paths := make([]string, len(formats))
				g, ctx := errgroup.WithContext(cmd.Context())
				for i, format := range formats {
					g.Go(func() error {
						data, err := a.client.Export(ctx, credential, format)
						if err != nil {
							return err
						}
						path := filepath.Join(outDir, exportFileName(format))
						if err := os.WriteFile(path, data, 0600); err != nil {
							return fmt.Errorf("failed to write %s: %w", path, err)
						}
						paths[i] = path
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					return err
				}

				for _, path := range paths {
					_, _ = fmt.Fprintf(a.out, "Wrote %s\n", path)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&formats, "format", []string{"csv"}, "Export formats: csv, json, xlsx")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory to write exported files to")
	return cmd
}
