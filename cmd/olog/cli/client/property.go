package client

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mwantia/olog/internal/agent"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/repository"
	"github.com/spf13/cobra"
)

func NewPropertyCommand() *cobra.Command {
	n := named[entity.Property]{
		kind: "property",
		repo: func(svc *agent.Services) *repository.PropertyRepository { return svc.Properties },
	}

	cmd := &cobra.Command{
		Use:   "property",
		Short: "Manage property definitions",
		Long: heredoc.Doc(`
			Manage property definitions. A definition names the attributes a log
			can fill in when it references the property.`),
	}

	cmd.AddCommand(newPropertyCreateCommand())
	cmd.AddCommand(n.getCommand())
	cmd.AddCommand(n.listCommand())
	cmd.AddCommand(n.removeCommand())

	return cmd
}

func newPropertyCreateCommand() *cobra.Command {
	var owner string
	var attributes []string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or replace a property definition",
		Example: heredoc.Doc(`
			$ olog property create ticket --attribute id --attribute url`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs := make([]entity.Attribute, 0, len(attributes))
			for _, attr := range attributes {
				attrs = append(attrs, parseAttribute(attr))
			}
			property := entity.NewProperty(args[0], owner, attrs...)

			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				saved, err := svc.Properties.Save(ctx, property)
				if err != nil {
					return err
				}
				return printYAML(cmd, saved)
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner of the property")
	cmd.Flags().StringArrayVar(&attributes, "attribute", nil, "attribute as name or name=value, repeatable")

	return cmd
}
