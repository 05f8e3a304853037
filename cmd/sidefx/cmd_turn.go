package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"sidefx/internal/hooks"
	"sidefx/internal/research"
	_ "sidefx/internal/research/providers" // register provider constructors
	"sidefx/internal/runtime"
	"sidefx/internal/session"
)

var turnQuery string

var turnCmd = &cobra.Command{
	Use:   "turn <command>",
	Short: "Run one tool invocation under the full hook lifecycle",
	Long: `Runs a single agent turn end to end: session.start fires, the command
executes as the turn's tool under tool.pre/tool.post, the result lands in the
session ledger, and session.end fires. With --query the tool instead routes a
research query. Useful for exercising a hook configuration the way a real
session would.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && turnQuery == "" {
			return errors.New("provide a command to run or --query")
		}

		defs, err := hooks.DefinitionsFromConfig(cfg.Hooks)
		if err != nil {
			return err
		}
		mgr, err := hooks.NewManager(defs)
		if err != nil {
			return err
		}

		store := session.NewStore()
		defer store.Close()
		router := research.NewRouter(research.Build(cfg.Providers))

		dir, _ := os.Getwd()
		rt := runtime.New(store, mgr, router, runtime.WithWorkingDir(dir))

		ctx := cmd.Context()
		id := rt.StartSession(ctx)
		defer rt.EndSession(ctx, id)

		if turnQuery != "" {
			store.AddMessage(id, "user", turnQuery)
			res := rt.Research(ctx, id, research.Query{
				Text:   turnQuery,
				Intent: research.IntentGeneral,
			})
			if !res.OK() {
				return fmt.Errorf("%s", res.Err.Error())
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Content)
			return nil
		}

		command := strings.Join(args, " ")
		store.AddMessage(id, "user", command)

		out, err := rt.RunTool(ctx, id, "shell", command, func(ctx context.Context) (string, error) {
			shell := hooks.DefaultShell()
			c := exec.CommandContext(ctx, shell.Path, append(shell.Args, command)...)
			b, err := c.CombinedOutput()
			return string(b), err
		})

		var cancelled *runtime.ToolCancelledError
		if errors.As(err, &cancelled) {
			fmt.Fprintf(cmd.ErrOrStderr(), "turn cancelled: %s\n", cancelled.Reason)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	turnCmd.Flags().StringVarP(&turnQuery, "query", "q", "", "route a research query instead of a command")
}
