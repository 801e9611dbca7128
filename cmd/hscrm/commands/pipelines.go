package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewPipelinesCommand creates the pipelines command group.
func NewPipelinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pipelines",
		Aliases: []string{"pipeline"},
		Short:   "Inspect deal and ticket pipelines",
	}

	cmd.AddCommand(newPipelinesShowCommand())
	cmd.AddCommand(newPipelinesListCommand())
	cmd.AddCommand(newPipelinesStagesCommand())
	cmd.AddCommand(newPipelinesDefaultStageCommand())

	return cmd
}

func newPipelinesShowCommand() *cobra.Command {
	var (
		pipelineID string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show pipeline details",
		Long: `Show the ticket and deal pipelines with their stages. Without flags the
configured pipeline is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			pipelines, err := client.Pipelines().Details(cmd.Context(), pipelineID, all)
			if err != nil {
				return fmt.Errorf("failed to get pipeline details: %w", err)
			}

			return renderPipelines(pipelines)
		},
	}

	cmd.Flags().StringVar(&pipelineID, "id", "", "pipeline id (default the configured pipeline)")
	cmd.Flags().BoolVar(&all, "all", false, "show every pipeline")

	return cmd
}

func newPipelinesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list OBJECT_TYPE",
		Short:   "List the pipelines of an object type",
		Example: `  hscrm pipelines list deals`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			pipelines, err := client.Pipelines().List(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list pipelines: %w", err)
			}

			return renderPipelines(pipelines)
		},
	}
}

func newPipelinesStagesCommand() *cobra.Command {
	var objectType string

	cmd := &cobra.Command{
		Use:   "stages [PIPELINE_ID]",
		Short: "List the stages of a pipeline in display order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			var pipelineID string
			if len(args) > 0 {
				pipelineID = args[0]
			} else {
				pipelineID, err = client.Pipelines().PipelineID()
				if err != nil {
					return err
				}
			}

			stages, err := client.Pipelines().Stages(cmd.Context(), objectType, pipelineID)
			if err != nil {
				return fmt.Errorf("failed to list stages: %w", err)
			}

			return renderStages(stages)
		},
	}

	cmd.Flags().StringVar(&objectType, "object-type", "deals", "pipeline object type (deals or tickets)")

	return cmd
}

func newPipelinesDefaultStageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default-stage",
		Short: "Show the stage new deals start in",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			stage, err := client.Pipelines().DefaultDealStage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get default stage: %w", err)
			}

			return renderStages([]hscrm.PipelineStage{*stage})
		},
	}
}

func renderPipelines(pipelines []hscrm.Pipeline) error {
	return renderOutput(pipelines, func(pipelines []hscrm.Pipeline) error {
		if len(pipelines) == 0 {
			_, _ = os.Stdout.WriteString("No pipelines found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Label", "Object Type", "Stages", "Archived")

		for _, pipeline := range pipelines {
			_ = table.Append(pipeline.ID, pipeline.Label, formatConfigValue(pipeline.ObjectType),
				strconv.Itoa(len(pipeline.Stages)), strconv.FormatBool(pipeline.Archived))
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

func renderStages(stages []hscrm.PipelineStage) error {
	return renderOutput(stages, func(stages []hscrm.PipelineStage) error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Order", "ID", "Label", "Archived")

		for _, stage := range stages {
			_ = table.Append(strconv.Itoa(stage.DisplayOrder), stage.ID, stage.Label, strconv.FormatBool(stage.Archived))
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}
