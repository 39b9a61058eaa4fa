// crmctl tareas de operación: aprovisionar tenants y reintentar invitaciones pendientes.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/jhoicas/CRM-api/internal/bootstrap"
	"github.com/jhoicas/CRM-api/pkg/config"
)

const storageFlag = "storage"

// storageFlags se registran en cada subcomando ejecutable.
var storageFlags = map[string]cobraflags.Flag{
	storageFlag: &cobraflags.StringFlag{
		Name:  storageFlag,
		Value: "",
		Usage: "Motor de almacenamiento (postgres, memory). Vacío usa STORAGE_DRIVER",
	},
}

// opener abre las dependencias; los tests lo sustituyen.
type opener func(ctx context.Context) (*bootstrap.App, error)

func openFromEnv(ctx context.Context) (*bootstrap.App, error) {
	// La bandera se aplica antes de Load: con memory no se exige configuración de la base.
	if driver := storageFlags[storageFlag].GetString(); driver != "" {
		if err := os.Setenv("STORAGE_DRIVER", driver); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	return bootstrap.Open(ctx, cfg, bootstrap.NewLogger(cfg))
}

func newRootCommand(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Herramientas de operación del CRM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTenantCommand(open))
	root.AddCommand(newInvitesCommand(open))
	return root
}

func main() {
	if err := newRootCommand(openFromEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
