package client

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mwantia/olog/internal/agent"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/repository"
	"github.com/spf13/cobra"
)

func NewLogbookCommand() *cobra.Command {
	n := named[entity.Logbook]{
		kind: "logbook",
		repo: func(svc *agent.Services) *repository.LogbookRepository { return svc.Logbooks },
	}

	cmd := &cobra.Command{
		Use:   "logbook",
		Short: "Manage logbooks",
		Long:  "Manage the logbooks logs are filed under.",
	}

	cmd.AddCommand(newLogbookCreateCommand())
	cmd.AddCommand(n.getCommand())
	cmd.AddCommand(n.listCommand())
	cmd.AddCommand(n.removeCommand())

	return cmd
}

func newLogbookCreateCommand() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "create <name>...",
		Short: "Create or reactivate logbooks",
		Example: heredoc.Doc(`
			$ olog logbook create operations physics --owner ops`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logbooks := make([]entity.Logbook, 0, len(args))
			for _, name := range args {
				logbooks = append(logbooks, entity.NewLogbook(name, owner))
			}
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				saved, err := svc.Logbooks.SaveAll(ctx, logbooks)
				if err != nil {
					return err
				}
				return printYAML(cmd, saved)
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner of the logbooks")

	return cmd
}
