// Package cli wires the ebuilder commands.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/ebuilder/internal/config"
	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/mail"
	"github.com/ebuilder/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	appConfig config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "ebuilder",
	Short: "Website builder with pages, blog and a digital shop",
	Long: `ebuilder serves a site assembled from content blocks, a blog and a shop
for digital products. Running it without a subcommand starts the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, optional)")
	rootCmd.AddCommand(serveCmd, migrateCmd, createSuperuserCmd, seedCmd)
}

// openDatabase connects and migrates using the loaded configuration.
func openDatabase() error {
	if err := db.Init(appConfig.DatabaseURL); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	return nil
}

func mediaStore(cfg config.AppConfig) *storage.Local {
	return storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)
}

// mailSender picks the backend named by EMAIL_BACKEND.
func mailSender(cfg config.EmailConfig) mail.Sender {
	if cfg.Backend == config.EmailBackendSMTP {
		return mail.SMTPSender{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.HostUser,
			Password: cfg.HostPassword,
		}
	}
	return mail.ConsoleSender{Logger: log.Default()}
}
