package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/jhoicas/CRM-api/internal/application/organization"
	"github.com/jhoicas/CRM-api/internal/infrastructure/mailer"
)

func newInvitesCommand(open opener) *cobra.Command {
	invitesCmd := &cobra.Command{
		Use:   "invites",
		Short: "Invitaciones de organización",
	}
	dispatchCmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Reintenta las invitaciones not_sent con intentos disponibles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			uc := organization.NewOrganizationUseCase(app.Registry, mailer.NewLogMailer(app.Log), app.Log)
			res, err := uc.Dispatch(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "intentadas=%d enviadas=%d fallidas=%d\n", res.Attempted, res.Sent, res.Failed)
			return nil
		},
	}
	cobraflags.RegisterMap(dispatchCmd, storageFlags)
	invitesCmd.AddCommand(dispatchCmd)
	return invitesCmd
}
