package cli

import (
	"log"
	"os"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/handler"
	"github.com/ebuilder/internal/router"
	"github.com/ebuilder/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	if appConfig.GinMode != "" {
		gin.SetMode(appConfig.GinMode)
	}

	if err := openDatabase(); err != nil {
		return err
	}

	if err := db.EnsureStaff(db.DB, appConfig.SuperRootEmail, appConfig.SuperRootPassword); err != nil {
		log.Printf("failed to ensure staff account: %v", err)
	}

	if err := os.MkdirAll(appConfig.MediaRoot, 0o755); err != nil {
		return err
	}

	api := handler.NewAPI(db.DB, handler.Options{
		Files:  mediaStore(appConfig),
		Sender: mailSender(appConfig.Email),
		Mail: service.OrderMailConfig{
			From:  appConfig.Email.FromAddress,
			Admin: appConfig.Email.AdminAddress,
		},
	})

	r := router.SetupRouter(api, appConfig)
	log.Printf("listening on %s", appConfig.ListenAddr)
	return r.Run(appConfig.ListenAddr)
}
