package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/seed"
	"github.com/ebuilder/internal/service"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openDatabase(); err != nil {
			return err
		}
		log.Println("schema is up to date")
		return nil
	},
}

var (
	superuserEmail    string
	superuserPassword string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a verified staff account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openDatabase(); err != nil {
			return err
		}

		user, err := service.NewAccountService(db.DB).CreateSuperuser(superuserEmail, superuserPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "staff account %s created\n", user.Email)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty database with demo pages, posts and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openDatabase(); err != nil {
			return err
		}

		report, err := seed.Demo(db.DB, mediaStore(appConfig))
		if errors.Is(err, seed.ErrAlreadySeeded) {
			fmt.Fprintln(cmd.OutOrStdout(), "pages already exist, nothing to do")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d pages, %d posts and %d products\n",
			report.Pages, report.Posts, report.Products)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "email address of the account")
	createSuperuserCmd.Flags().StringVar(&superuserPassword, "password", "", "password, at least 8 characters")
	_ = createSuperuserCmd.MarkFlagRequired("email")
	_ = createSuperuserCmd.MarkFlagRequired("password")
}
