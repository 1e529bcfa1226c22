package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flashflow/internal/bootstrap"
	"flashflow/internal/bootstrap/logging"
	"flashflow/internal/errs"
	"flashflow/internal/usecase/pipeline"
)

type seedFile struct {
	Videos []seedVideo `yaml:"videos"`
}

type seedVideo struct {
	Title             string `yaml:"title"`
	ScriptNotRequired bool   `yaml:"script_not_required"`
	Script            string `yaml:"script"`
	ConceptID         string `yaml:"concept_id"`
	ProductID         string `yaml:"product_id"`
	PostingAccountID  string `yaml:"posting_account_id"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load video fixtures from a YAML file",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		path, _ := cmd.Flags().GetString("file")
		actor, _ := cmd.Flags().GetString("actor")

		raw, err := os.ReadFile(path)
		if err != nil {
			return errs.Wrapf(err, "read seed file %q", path)
		}

		var file seedFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return errs.Wrapf(err, "parse seed file %q", path)
		}

		for _, entry := range file.Videos {
			detail, err := svc.CreateVideo(ctx, pipeline.CreateVideoInput{
				Title:             entry.Title,
				ScriptNotRequired: entry.ScriptNotRequired,
				ConceptID:         entry.ConceptID,
				ProductID:         entry.ProductID,
				PostingAccountID:  entry.PostingAccountID,
				Actor:             actor,
			})
			if err != nil {
				return errs.Wrapf(err, "seed video %q", entry.Title)
			}

			if entry.Script != "" {
				if err := svc.AttachScript(ctx, pipeline.AttachScriptInput{
					VideoID: detail.VideoID,
					Text:    entry.Script,
					Version: 1,
					Actor:   actor,
				}); err != nil {
					return errs.Wrapf(err, "attach script for %q", entry.Title)
				}
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "seeded %s %s\n", detail.VideoID, entry.Title); err != nil {
				return errs.Wrap(err, "write seed output")
			}
		}

		logging.Info(ctx, "seed finished", slog.Int("videos", len(file.Videos)))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "configs/seed.yaml", "Seed fixture file")
	seedCmd.Flags().String("actor", "seed", "Actor recorded on seeded events")
}
