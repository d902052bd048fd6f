package client

import (
	"context"
	"fmt"

	"github.com/mwantia/olog/internal/agent"
	"github.com/mwantia/olog/pkg/repository"
	"github.com/spf13/cobra"
)

// named builds the read and delete commands shared by logbooks, tags and
// properties.
type named[E any] struct {
	kind string
	repo func(*agent.Services) *repository.Repository[E]
}

func (n named[E]) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: fmt.Sprintf("Show a %s", n.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				e, found, err := n.repo(svc).FindByID(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%s '%s' does not exist", n.kind, args[0])
				}
				return printYAML(cmd, e)
			})
		},
	}
}

func (n named[E]) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   fmt.Sprintf("List active %ss", n.kind),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				all, err := n.repo(svc).FindAll(ctx)
				if err != nil {
					return err
				}
				return printYAML(cmd, all)
			})
		},
	}
}

func (n named[E]) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>...",
		Short: fmt.Sprintf("Mark %ss inactive", n.kind),
		Long:  fmt.Sprintf("Mark %ss inactive. The records are kept and still resolve by name.", n.kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				repo := n.repo(svc)
				for _, name := range args {
					if err := repo.DeleteByID(ctx, name); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s '%s'\n", n.kind, name)
				}
				return nil
			})
		},
	}
}
