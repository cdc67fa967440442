package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/config"
	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
)

func feedbackCmd() *cobra.Command {
	var (
		email  string
		attach string
	)

	cmd := &cobra.Command{
		Use:   "feedback <message>",
		Short: "Send feedback to the finboard team",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			form := dashboard.NewFeedbackForm(a.client, a.session, a.logger)
			fb := model.Feedback{
				UserEmail:      email,
				Text:           strings.Join(args, " "),
				AttachmentPath: config.ExpandPath(attach),
			}
			if err := form.Submit(cmd.Context(), fb); err != nil {
				return common.NewUserError(form.Status.Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(form.Status.Notice))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "reply-to address (default: the signed-in user)")
	cmd.Flags().StringVar(&attach, "attach", "", "file to attach")
	return cmd
}
