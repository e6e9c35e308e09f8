package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"crypto-tracker/internal/api"
	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/menu"
	"crypto-tracker/internal/reporting"
	"crypto-tracker/internal/resolver"
)

const formatUsage = "output format: text, csv, markdown, json"

func (c *cli) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE:  c.runMenu,
	}
}

func (c *cli) runMenu(cmd *cobra.Command, _ []string) error {
	return menu.New(c.app.Tracker, c.in, c.out, c.logger.Named("menu")).Run(cmd.Context())
}

func (c *cli) listCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show prices for every coin in the watchlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := reporting.ParseFormat(format)
			if err != nil {
				return err
			}
			lines, err := c.app.Tracker.WatchlistPrices(cmd.Context())
			if err != nil {
				return err
			}
			return c.render(reporting.RenderWatchlist(f, lines, time.Now()))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", formatUsage)
	return cmd
}

func (c *cli) topCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "top [N]",
		Short: "Show the top N coins by market cap (default 10)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := api.DefaultTopN
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 1 {
					return fmt.Errorf("N must be a positive integer, got %q: %w", args[0], domain.ErrInvalidInput)
				}
				n = v
			}
			f, err := reporting.ParseFormat(format)
			if err != nil {
				return err
			}

			entries, err := c.app.Tracker.Top(cmd.Context(), n)
			if err != nil {
				return err
			}
			if f == reporting.FormatText {
				fmt.Fprintf(c.out, "Top %d Cryptocurrencies and their Prices (by Rank):\n\n", n)
			}
			return c.render(reporting.RenderLeaderboard(f, entries, time.Now()))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", formatUsage)
	return cmd
}

func (c *cli) pricesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "prices COIN...",
		Short: "Show prices for coins without changing the watchlist",
		Example: `  tracker prices bitcoin eth
  tracker prices "wrapped bitcoin, solana"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := reporting.ParseFormat(format)
			if err != nil {
				return err
			}
			res, err := c.app.Tracker.Prices(cmd.Context(), splitArgs(args))
			reportUnresolved(c.errOut, res.Resolutions)
			if err != nil {
				return err
			}
			return c.render(reporting.RenderWatchlist(f, res.Lines, time.Now()))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", formatUsage)
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add COIN...",
		Short: "Add coins to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Tracker.AddCoins(cmd.Context(), splitArgs(args))
			reportUnresolved(c.errOut, res.Resolutions)
			if err != nil {
				return err
			}
			switch {
			case len(res.Added) > 0:
				fmt.Fprintf(c.out, "Coins '%s' added!\n", strings.Join(domain.Strings(res.Added), ", "))
			case len(resolver.Resolved(res.Resolutions)) > 0:
				fmt.Fprintln(c.out, menu.AlreadyTracked)
			}
			return nil
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove COIN...",
		Short: "Remove coins from the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Tracker.RemoveCoins(cmd.Context(), splitArgs(args))
			if err != nil {
				return err
			}
			for _, input := range res.Unmatched {
				fmt.Fprintf(c.out, "'%s' is not in your selection.\n", input)
			}
			if len(res.Removed) > 0 {
				fmt.Fprintln(c.out, "Coins have been removed!")
			}
			return nil
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY...",
		Short: "List every coin matching a name or symbol",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			matches, err := c.app.Tracker.Search(cmd.Context(), query)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("could not find a coin matching '%s': %w", query, err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "%-30s %-30s %-10s %s\n", "ID", "NAME", "SYMBOL", "RANK")
			for _, m := range matches {
				rank := "-"
				if m.MarketCapRank != nil {
					rank = strconv.Itoa(*m.MarketCapRank)
				}
				fmt.Fprintf(c.out, "%-30s %-30s %-10s %s\n", m.ID, m.Name, m.Symbol, rank)
			}
			return nil
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the watchlist and prices over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := api.NewServer(c.app.Tracker, c.logger.Named("api"))
			return srv.ListenAndServe(cmd.Context(), c.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "config",
		Short:       "Print the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := c.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = c.out.Write(data)
			return err
		},
	}
}

func (c *cli) render(s string, err error) error {
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.out, s)
	return err
}

// splitArgs accepts both separate arguments and comma-separated lists.
func splitArgs(args []string) []string {
	return resolver.SplitInput(strings.Join(args, ","))
}

func reportUnresolved(w io.Writer, results []resolver.Resolution) {
	for _, r := range results {
		switch {
		case r.OK():
		case errors.Is(r.Err, domain.ErrNotFound):
			fmt.Fprintf(w, "Could not find a coin matching '%s'.\n", r.Input)
		default:
			fmt.Fprintf(w, "Could not look up '%s': %v\n", r.Input, r.Err)
		}
	}
}
