package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/grocery_shop/internal/seed"
	"github.com/Skotchmaster/grocery_shop/internal/service"
)

// grocery migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := boot(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()
		fmt.Println("schema is up to date")
		return nil
	},
}

// grocery seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo accounts, categories and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, err := boot(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		res, err := seed.Run(ctx, a.repo)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d users, %d categories, %d products\n", res.Users, res.Categories, res.Products)
		return nil
	},
}

// grocery reindex
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every product to the search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, err := boot(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		idx, err := a.searchIndex()
		if err != nil {
			return err
		}
		if idx == nil {
			return fmt.Errorf("ES_URL is not set")
		}
		n, err := (&service.CatalogService{Repo: a.repo, Index: idx}).Reindex(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d products\n", n)
		return nil
	},
}
