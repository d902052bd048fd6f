package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mwantia/olog/internal/agent"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/repository"
	"github.com/mwantia/olog/pkg/search"
	"github.com/spf13/cobra"
)

func NewLogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Manage logs",
	}

	cmd.AddCommand(newLogCreateCommand())
	cmd.AddCommand(newLogGetCommand())
	cmd.AddCommand(newLogListCommand())
	cmd.AddCommand(newLogRemoveCommand())
	cmd.AddCommand(newLogAttachmentCommand())

	return cmd
}

type logCreateOptions struct {
	owner       string
	title       string
	level       string
	logbooks    []string
	tags        []string
	properties  []string
	events      []string
	attachments []string
}

func (o *logCreateOptions) build(description string) (entity.Log, error) {
	b := entity.CreateLog(description).Owner(o.owner).Title(o.title).Level(o.level).Source(description)
	for _, name := range o.logbooks {
		b.WithLogbook(entity.Logbook{Name: name})
	}
	for _, name := range o.tags {
		b.WithTag(entity.Tag{Name: name})
	}

	props, err := parseProperties(o.properties)
	if err != nil {
		return entity.Log{}, err
	}
	b.WithProperties(props...)

	events, err := parseEvents(o.events, search.TimeParser{})
	if err != nil {
		return entity.Log{}, err
	}
	b.WithEvents(events...)

	return b.Build(), nil
}

func newLogCreateCommand() *cobra.Command {
	o := &logCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create <description>",
		Short: "Create a log",
		Long: heredoc.Doc(`
			Create a log. Logbooks, tags and properties have to exist and be active,
			every invalid reference is reported at once.`),
		Example: heredoc.Doc(`
			$ olog log create "Beam lost in sector 3" --logbook operations --tag fault \
			    --property ticket.id=42 --event "beam lost=2024-03-01 11:58:00.000" \
			    --attach trace.csv`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := o.build(args[0])
			if err != nil {
				return err
			}

			uploads := make([]repository.Upload, 0, len(o.attachments))
			for _, path := range o.attachments {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open attachment: %w", err)
				}
				defer f.Close()
				uploads = append(uploads, repository.Upload{
					Filename:    filepath.Base(path),
					ContentType: mime.TypeByExtension(filepath.Ext(path)),
					Content:     f,
				})
			}

			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				saved, err := svc.Logs.SaveWithAttachments(ctx, l, uploads)
				if err != nil {
					return err
				}
				return printYAML(cmd, saved)
			})
		},
	}

	cmd.Flags().StringVar(&o.owner, "owner", os.Getenv("USER"), "owner of the log")
	cmd.Flags().StringVar(&o.title, "title", "", "title of the log")
	cmd.Flags().StringVar(&o.level, "level", "Info", "level of the log")
	cmd.Flags().StringArrayVar(&o.logbooks, "logbook", nil, "logbook to file the log under, repeatable")
	cmd.Flags().StringArrayVar(&o.tags, "tag", nil, "tag of the log, repeatable")
	cmd.Flags().StringArrayVar(&o.properties, "property", nil, "property as name or name.attribute=value, repeatable")
	cmd.Flags().StringArrayVar(&o.events, "event", nil, "event as name=time, repeatable")
	cmd.Flags().StringArrayVar(&o.attachments, "attach", nil, "file to attach, repeatable")

	return cmd
}

func newLogGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				l, found, err := svc.Logs.FindByID(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("log '%s' does not exist", args[0])
				}
				return printYAML(cmd, l)
			})
		},
	}
}

func newLogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the latest active logs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				logs, err := svc.Logs.FindAll(ctx)
				if err != nil {
					return err
				}
				return printYAML(cmd, logs)
			})
		},
	}
}

func newLogRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Mark logs inactive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				for _, id := range args {
					if err := svc.Logs.DeleteByID(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed log '%s'\n", id)
				}
				return nil
			})
		},
	}
}

func newLogAttachmentCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "attachment <log-id> <attachment-id>",
		Short: "Download an attachment of a log",
		Example: heredoc.Doc(`
			$ olog log attachment 42 0b7c7d1e-5f0c-4d55-9a63-8f1f2c1b3a10 --output trace.csv`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *agent.Services) error {
				attachment, rc, err := svc.Logs.OpenAttachment(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				defer rc.Close()

				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					if strings.HasSuffix(output, string(filepath.Separator)) {
						output = filepath.Join(output, filepath.Base(attachment.Filename))
					}
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}

				if _, err := io.Copy(w, rc); err != nil {
					return fmt.Errorf("failed to download attachment %s: %w", attachment.ID, err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write to, stdout if unset")

	return cmd
}
