package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
	"github.com/vasiliy-maslov/foodtruck-service/internal/seed"
)

var seedOpts seed.Options

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo business with a menu, customers and orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pg, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer pg.Close()

		// Demo orders are not announced to brokers or live streams.
		services, err := newServices(pg, events.NewNoop(), cfg)
		if err != nil {
			return err
		}

		seeder := seed.NewSeeder(services.Accounts, services.Catalog, services.Customers, services.Locations, services.Orders, os.Stderr)
		result, err := seeder.Run(ctx, seedOpts)
		if err != nil {
			return err
		}

		log.Info().
			Stringer("account_id", result.AccountID).
			Int("products", result.Products).
			Int("customers", result.Customers).
			Int("orders", result.Orders).
			Msg("Demo data seeded")
		fmt.Fprintf(cmd.OutOrStdout(), "account %s (owner uid %s)\n", result.AccountID, result.OwnerUID)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.AccountName, "account-name", "", "business name for the demo account (random when empty)")
	seedCmd.Flags().IntVar(&seedOpts.Products, "products", 0, "number of menu items to create (whole demo menu when 0)")
	seedCmd.Flags().IntVar(&seedOpts.Customers, "customers", 5, "number of customers to create")
	seedCmd.Flags().IntVar(&seedOpts.Orders, "orders", 25, "number of orders to create")
}
