package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/clinicscribe-backend/internal/app"
	"github.com/yungbote/clinicscribe-backend/internal/appointment"
	"github.com/yungbote/clinicscribe-backend/internal/services"
)

func newApproveCmd() *cobra.Command {
	var (
		plan, to, bodyFile, session string
		send                        bool
	)
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Extract the follow-up appointment from a plan and preview or send the email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := services.ApprovePlanInput{SessionID: session, PlanText: plan, Recipient: to, Send: send}
			if bodyFile != "" {
				b, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("read body file: %w", err)
				}
				in.OverrideBody = string(b)
			}

			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Services.Consultation.ApprovePlan(cmd.Context(), in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if res.Status == appointment.StatusFailed {
				return fmt.Errorf("appointment email failed: %s", res.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&plan, "plan", "", "plan section text (defaults to the stored plan for --session)")
	cmd.Flags().StringVar(&session, "session", "", "consultation session id")
	cmd.Flags().StringVar(&to, "to", "", "recipient email address")
	cmd.Flags().BoolVar(&send, "send", false, "send the email instead of previewing it")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "file holding an edited email body")
	return cmd
}
