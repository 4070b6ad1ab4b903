package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/memo/internal/app"
	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command through the cache",
		Long: "Run executes the command line after -- for the selected project. " +
			"If a previous run with the same fingerprint is cached, its outputs " +
			"and log are restored instead of executing the command.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}

			project, _ := cmd.Flags().GetString("project")
			configPath, _ := cmd.Flags().GetString("config")

			result, err := c.app.Run(cmd.Context(), strings.Join(args, " "), app.RunOptions{
				Project:    project,
				ConfigPath: configPath,
			})
			if err != nil {
				return err
			}

			if result.ExitCode != 0 {
				c.exitCode = result.ExitCode
				return zerr.With(domain.ErrCommandFailed, "exit_code", result.ExitCode)
			}
			return nil
		},
	}
	cmd.Flags().StringP("project", "p", "", "Project name (default: detected from the working directory)")
	return cmd
}
