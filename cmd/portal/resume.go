package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// resumeExtensions are the file types the backend accepts for upload.
var resumeExtensions = []string{".pdf", ".doc", ".docx"}

func newResumeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Manage your uploaded resume",
	}
	cmd.AddCommand(newResumeUploadCmd(opts))
	return cmd
}

func newResumeUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a resume (PDF or Word) to your profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ext := strings.ToLower(filepath.Ext(path))
			supported := false
			for _, e := range resumeExtensions {
				if e == ext {
					supported = true
					break
				}
			}
			if !supported {
				return fmt.Errorf("unsupported resume type %q (want %s)", ext, strings.Join(resumeExtensions, ", "))
			}

			return withApp(cmd, opts, func(a *app) error {
				credential, err := a.credential()
				if err != nil {
					return err
				}

				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open resume: %w", err)
				}
				defer func() { _ = f.Close() }()

				ctx := cmd.Context()
				if err := a.client.UploadResume(ctx, credential, filepath.Base(path), f); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "Uploaded %s.\n", filepath.Base(path))

				// The backend drops its cached recommendations after an upload.
				a.orch.Start(ctx)
				a.printer.PrintView(a.orch.View())
				return nil
			})
		},
	}
}
