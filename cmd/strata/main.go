// Command strata is the operator tool for seeding and exporting entities.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jacentio/strata/store"
)

var (
	configPath string
	tableName  string
	region     string
	endpoint   string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "strata",
		Short:         "Seed and export entities in the strata table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&tableName, "table", "", "entity table name")
	root.PersistentFlags().StringVar(&region, "region", "", "AWS region")
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "DynamoDB endpoint override")

	root.AddCommand(seedCmd(), exportCmd())
	return root
}

// loadConfig layers flags over the optional YAML file over defaults.
// AWS credentials resolve through the default chain; a .env file is loaded
// first when present so local runs can carry them there.
func loadConfig() (store.Config, error) {
	_ = godotenv.Load()

	cfg := store.DefaultConfig()
	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}
	if tableName != "" {
		cfg.TableName = tableName
	}
	if region != "" {
		cfg.Region = region
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	return cfg, nil
}

func newStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := store.NewClient(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return store.New(client, cfg, logger), nil
}

func seedCmd() *cobra.Command {
	var replace, dryRun bool

	cmd := &cobra.Command{
		Use:   "seed <entities.json>",
		Short: "Idempotently load entities from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var entities []store.Entity
			if err := json.Unmarshal(raw, &entities); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			for i := range entities {
				if entities[i].ID == "" {
					entities[i].ID = uuid.NewString()
				}
			}

			s, err := newStore(cmd)
			if err != nil {
				return err
			}
			result := s.SeedEntities(cmd.Context(), entities, store.SeedOptions{
				Replace: replace,
				DryRun:  dryRun,
			})

			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d, errored %d\n",
				len(result.Created), len(result.Skipped), len(result.Errored))
			for _, name := range result.Errored {
				fmt.Fprintf(cmd.OutOrStdout(), "errored: %s\n", name)
			}
			if len(result.Errored) > 0 {
				return fmt.Errorf("%d entities failed to seed", len(result.Errored))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "write entities unconditionally")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check only, suppress writes")
	return cmd
}

func exportCmd() *cobra.Command {
	var model, ou, out string
	var limit int32

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump an OU's entities as sequence-ordered JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newStore(cmd)
			if err != nil {
				return err
			}
			data, err := s.ExportJSON(cmd.Context(), ou, model, limit)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			return os.WriteFile(out, append(data, '\n'), 0o644)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "entity model to export")
	cmd.Flags().StringVar(&ou, "ou", store.RootOU, "organizational unit")
	cmd.Flags().Int32Var(&limit, "limit", 0, "maximum entities (0 = all)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
