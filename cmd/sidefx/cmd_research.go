package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sidefx/internal/research"
	_ "sidefx/internal/research/providers" // register provider constructors
)

var (
	researchIntent    string
	researchProviders []string
	researchNoCache   bool
)

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Route a research query across the enabled providers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := research.Query{
			Text:   strings.Join(args, " "),
			Intent: research.ParseIntent(researchIntent),
		}

		opts := []research.RouterOption{}
		if !researchNoCache {
			opts = append(opts, research.WithCache(research.NewCache(1000, 30*time.Minute)))
		}
		router := research.NewRouter(research.Build(cfg.Providers), opts...)

		res := router.Route(cmd.Context(), query, research.RouteOptions{
			ProviderOrder: researchProviders,
		})

		for _, a := range res.Attempts {
			fmt.Fprintf(cmd.ErrOrStderr(), "attempt failed: %v\n", a.Err)
		}
		if !res.OK() {
			return fmt.Errorf("%s", res.Err.Error())
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "provider: %s\n", res.Provider)
		fmt.Fprintln(cmd.OutOrStdout(), res.Content)
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVarP(&researchIntent, "intent", "i", "general",
		"query intent: general, news, academic, coding")
	researchCmd.Flags().StringSliceVarP(&researchProviders, "providers", "p", nil,
		"explicit provider preference order")
	researchCmd.Flags().BoolVar(&researchNoCache, "no-cache", false,
		"bypass the in-memory result cache")
}
