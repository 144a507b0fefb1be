package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solandes-viajes/cost-console/internal/expense"
	"github.com/solandes-viajes/cost-console/internal/importer"
)

var importSheet string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load seed data into the document store",
}

var importCatalogCmd = &cobra.Command{
	Use:   "catalog <file.xlsx>",
	Short: "Replace destination catalogs from an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		order, byDest, err := importer.ReadCatalogXLSX(args[0], importer.XLSXOptions{SheetName: importSheet})
		if err != nil {
			return err
		}

		total := 0
		for _, dest := range order {
			if err := env.Store.ReplaceServices(ctx, dest, byDest[dest]); err != nil {
				return err
			}
			total += len(byDest[dest])
		}

		zap.L().Info("catalog imported",
			zap.Int("destinations", len(order)),
			zap.Int("services", total),
		)
		return nil
	},
}

var importGroupsCmd = &cobra.Command{
	Use:   "groups <file.json>",
	Short: "Upsert group records from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		groups, err := importer.ReadGroupsJSON(args[0])
		if err != nil {
			return err
		}
		if err := env.Store.PutGroups(ctx, groups); err != nil {
			return err
		}

		zap.L().Info("groups imported", zap.Int("groups", len(groups)))
		return nil
	},
}

var importExpensesCmd = &cobra.Command{
	Use:   "expenses <file.json>",
	Short: "Upsert expense documents from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		docs, err := importer.ReadExpensesJSON(args[0])
		if err != nil {
			return err
		}

		for _, doc := range docs {
			path := doc.Path
			if path == "" {
				path = expense.DefaultPaths()[0]
			}
			if err := env.Store.PutExpenseDocs(ctx, doc.GroupID, path, doc.Entries); err != nil {
				return err
			}
		}

		zap.L().Info("expense documents imported", zap.Int("documents", len(docs)))
		return nil
	},
}

func init() {
	importCatalogCmd.Flags().StringVar(&importSheet, "sheet", "", "worksheet name (default: first sheet)")

	importCmd.AddCommand(importCatalogCmd)
	importCmd.AddCommand(importGroupsCmd)
	importCmd.AddCommand(importExpensesCmd)
	rootCmd.AddCommand(importCmd)
}
