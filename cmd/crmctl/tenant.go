package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/jhoicas/CRM-api/internal/domain/schema"
)

func newTenantCommand(open opener) *cobra.Command {
	tenantCmd := &cobra.Command{
		Use:   "tenant",
		Short: "Operaciones sobre tenants",
	}
	provisionCmd := &cobra.Command{
		Use:   "provision <tenantId>",
		Short: "Crea todas las particiones del tenant",
		Long: `Crea las particiones del tenant (usuarios, empresas, contactos, leads,
llamadas, pipelines y refresh tokens). Es idempotente.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]
			if !schema.ValidTenantID(tenantID) {
				return fmt.Errorf("tenantId inválido %q", tenantID)
			}
			app, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Registry.ProvisionTenant(cmd.Context(), tenantID); err != nil {
				return err
			}
			app.Log.Tenant(tenantID).Info().Msg("tenant aprovisionado")
			fmt.Fprintf(cmd.OutOrStdout(), "tenant %s aprovisionado\n", tenantID)
			return nil
		},
	}
	cobraflags.RegisterMap(provisionCmd, storageFlags)
	tenantCmd.AddCommand(provisionCmd)
	return tenantCmd
}
