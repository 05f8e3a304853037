package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sidefx/internal/hooks"
)

var (
	hookTool   string
	hookArgs   string
	hookResult string
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Inspect and dry-run configured lifecycle hooks",
}

var hooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured hooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Hooks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no hooks configured")
			return nil
		}
		for i, h := range cfg.Hooks {
			line := fmt.Sprintf("%d. [%s] %s", i+1, h.Event, h.Command)
			if h.Matcher != "" {
				line += fmt.Sprintf(" (matcher: %s)", h.Matcher)
			}
			if h.Background {
				line += " (background)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var hooksFireCmd = &cobra.Command{
	Use:   "fire <event>",
	Short: "Fire an event against the configured hooks with a synthetic context",
	Long: `Fires one lifecycle event so hook configurations can be tested without
running a full session. The context carries a fresh session id and the
current working directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := hooks.ParseEvent(args[0])
		if err != nil {
			return err
		}

		defs, err := hooks.DefinitionsFromConfig(cfg.Hooks)
		if err != nil {
			return err
		}
		mgr, err := hooks.NewManager(defs)
		if err != nil {
			return err
		}

		dir, _ := os.Getwd()
		res := mgr.Fire(cmd.Context(), event, hooks.Context{
			Event:      event,
			SessionID:  uuid.NewString(),
			Dir:        dir,
			ToolName:   hookTool,
			ToolArgs:   hookArgs,
			ToolResult: hookResult,
		})

		if res.Cancelled {
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled: %s\n", res.Reason)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	hooksFireCmd.Flags().StringVar(&hookTool, "tool", "", "tool name for the event context")
	hooksFireCmd.Flags().StringVar(&hookArgs, "args", "", "tool arguments for the event context")
	hooksFireCmd.Flags().StringVar(&hookResult, "result", "", "tool result for the event context")

	hooksCmd.AddCommand(hooksListCmd)
	hooksCmd.AddCommand(hooksFireCmd)
}
