package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roro-kube/app/internal/domain"
	"github.com/roro-kube/app/internal/persistence"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <app>",
		Short: "Clone or update an app repository",
		Long: `Sync resolves the named app in the workstation configuration and clones
its repository, or fetches the latest changes when it is already present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args[0])
		},
	}
}

func runSync(cmd *cobra.Command, appName string) error {
	config, err := persistence.LoadWorkstationConfig()
	if err != nil {
		return err
	}

	app, found := config.FindApp(appName)
	if !found {
		configPath, pathErr := persistence.ConfigPath()
		if pathErr != nil {
			configPath = "unknown"
		}
		return fmt.Errorf("App '%s' not found in workstation configuration (config file: %s)",
			appName, configPath)
	}

	localPath, err := app.ResolveLocalPath()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Syncing %s from %s...\n", app.Name, app.GitURL)
	if err := persistence.SyncRepository(cmd.Context(), app.GitURL, localPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Synced %s to %s\n", app.Name, localPath)

	// Surface the app's own configuration when the repository carries one.
	appConfig, err := domain.LoadAppConfig(localPath)
	switch {
	case err == nil:
		fmt.Fprintf(cmd.OutOrStdout(), "App config: %s (%d port forwards)\n",
			appConfig.Name, len(appConfig.PortForwarding))
	case isMissingAppConfig(err):
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", err)
	}
	return nil
}

func isMissingAppConfig(err error) bool {
	kind, ok := domain.KindOf(err)
	return ok && kind == domain.ErrHandlerNotFound
}
