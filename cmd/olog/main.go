package main

import (
	"fmt"
	"os"

	"github.com/mwantia/olog/cmd/olog/cli"
	"github.com/mwantia/olog/cmd/olog/cli/client"
	"github.com/mwantia/olog/cmd/olog/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())

	root.AddCommand(client.NewLogbookCommand())
	root.AddCommand(client.NewTagCommand())
	root.AddCommand(client.NewPropertyCommand())
	root.AddCommand(client.NewLogCommand())
	root.AddCommand(client.NewSearchCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
