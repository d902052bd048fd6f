package client

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mwantia/olog/internal/agent"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/repository"
	"github.com/spf13/cobra"
)

func NewTagCommand() *cobra.Command {
	n := named[entity.Tag]{
		kind: "tag",
		repo: func(svc *agent.Services) *repository.TagRepository { return svc.Tags },
	}

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	cmd.AddCommand(newTagCreateCommand())
	cmd.AddCommand(n.getCommand())
	cmd.AddCommand(n.listCommand())
	cmd.AddCommand(n.removeCommand())

	return cmd
}

func newTagCreateCommand() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "create <name>...",
		Short: "Create or reactivate tags",
		Example: heredoc.Doc(`
			$ olog tag create fault urgent`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := make([]entity.Tag, 0, len(args))
			for _, name := range args {
				tags = append(tags, entity.NewTag(name, owner))
			}
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				saved, err := svc.Tags.SaveAll(ctx, tags)
				if err != nil {
					return err
				}
				return printYAML(cmd, saved)
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner of the tags")

	return cmd
}
