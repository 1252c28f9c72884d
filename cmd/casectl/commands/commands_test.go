package commands_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/caseapi-client/cmd/casectl/commands"
)

func TestCommandGroups(t *testing.T) {
	tests := []struct {
		name        string
		cmd         *cobra.Command
		use         string
		subcommands []string
	}{
		{"config", commands.NewConfigCommand(), "config", []string{"show", "set", "unset"}},
		{"actions", commands.NewActionsCommand(), "actions", []string{"list", "get"}},
		{"tasks", commands.NewTasksCommand(), "tasks", []string{"list", "get", "delete"}},
		{"fields", commands.NewFieldsCommand(), "fields", []string{"get", "set", "funding"}},
		{"files", commands.NewFilesCommand(), "files", []string{"upload", "list"}},
		{"steps", commands.NewStepsCommand(), "steps", []string{"list", "current", "cancel", "archive", "close"}},
		{"cleanup", commands.NewCleanupCommand(), "cleanup", []string{"tasks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			assert.ElementsMatch(t, tt.subcommands, subcommandNames(tt.cmd))

			for _, name := range tt.subcommands {
				sub := findSubcommand(tt.cmd, name)
				require.NotNil(t, sub, name)
				assert.NotNil(t, sub.RunE, name)
			}
		})
	}
}

func TestListCommandsHavePagingFlags(t *testing.T) {
	groups := []*cobra.Command{
		commands.NewActionsCommand(),
		commands.NewTasksCommand(),
		commands.NewFilesCommand(),
		commands.NewStepsCommand(),
	}

	for _, group := range groups {
		list := findSubcommand(group, "list")
		require.NotNil(t, list, group.Name())

		for _, flag := range []string{"filter", "include", "sort", "page", "page-size", "all"} {
			assert.NotNil(t, list.Flags().Lookup(flag), "%s list --%s", group.Name(), flag)
		}
	}
}

func TestFieldsCommandFlags(t *testing.T) {
	fields := commands.NewFieldsCommand()

	for _, name := range []string{"get", "set"} {
		sub := findSubcommand(fields, name)
		require.NotNil(t, sub)
		assert.NotNil(t, sub.Flags().Lookup("group"))
		assert.NotNil(t, sub.Flags().Lookup("field"))
	}

	assert.Equal(t, "set ACTION_ID VALUE", findSubcommand(fields, "set").Use)
}

func TestFilesUploadFlags(t *testing.T) {
	upload := findSubcommand(commands.NewFilesCommand(), "upload")
	require.NotNil(t, upload)

	assert.Equal(t, "upload PATH", upload.Use)
	assert.NotNil(t, upload.Flags().Lookup("action"))
	assert.NotNil(t, upload.Flags().Lookup("folder"))
	assert.NotNil(t, upload.Flags().Lookup("name"))
}

func TestLoginCommand(t *testing.T) {
	cmd := commands.NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.Equal(t, "Store API credentials", cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("api-key-header"))

	logout := commands.NewLogoutCommand()
	assert.Equal(t, "logout", logout.Use)
}
