package client

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mwantia/olog/internal/agent"
	"github.com/spf13/cobra"
)

func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [key=value]...",
		Short: "Search logs",
		Long: heredoc.Doc(`
			Search logs. Every argument is a search parameter, values of the same
			key are alternatives and distinct keys all have to match.

			  title, level        words of the title or level, '*' as wildcard
			  desc, phrase        any word or the exact phrase of the description
			  owner               owner of the log
			  tags, logbooks      referenced names, '*' as wildcard
			  properties          property[.attribute[.value]]
			  start, end          'YYYY-MM-DD hh:mm:ss.SSS', 'now' or '3 days'
			  includeEvents       match start and end against the events instead
			  size, from, sort    paging and order (up, down, relevance)`),
		Example: heredoc.Doc(`
			$ olog search desc=beam tags=fault start="2 days"
			$ olog search properties=ticket.id.42 includeEvents= start="1 hour"`),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseSearchArgs(args)
			if err != nil {
				return err
			}
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				res, err := svc.Logs.Search(ctx, raw)
				if err != nil {
					return err
				}
				return printYAML(cmd, res)
			})
		},
	}

	return cmd
}
