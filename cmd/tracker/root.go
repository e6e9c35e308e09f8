package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crypto-tracker/internal/app"
	"crypto-tracker/internal/config"
	"crypto-tracker/internal/logging"
)

// skipApp marks commands that only need configuration.
const skipApp = "skip-app"

type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	app     *app.App
}

// execute runs the command line in args and releases every resource it
// opened before returning.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	c := &cli{in: in, out: out, errOut: errOut}
	defer c.teardown()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tracker",
		Short: "Track cryptocurrency prices from CoinGecko",
		Long: `Track cryptocurrency prices from the CoinGecko API.

Run without a subcommand to start the interactive menu. Coins can be given
by id, name or symbol; free text is resolved to the best search match.

Configuration is read from tracker.yaml (or --config), a .env file and
TRACKER_* environment variables, e.g. TRACKER_STORAGE_BACKEND=sqlite.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runMenu,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is ./tracker.yaml)")
	config.RegisterFlags(pf)

	root.AddCommand(
		c.menuCmd(),
		c.listCmd(),
		c.topCmd(),
		c.pricesCmd(),
		c.addCmd(),
		c.removeCmd(),
		c.searchCmd(),
		c.serveCmd(),
		c.configCmd(),
	)
	return root
}

// setup loads configuration and, unless the command opts out, opens the
// watchlist backend and builds the tracker.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{ConfigFile: c.cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := logging.NewWriter(c.errOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	c.logger = logger

	if cmd.Annotations[skipApp] != "" {
		return nil
	}

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) teardown() {
	if c.app != nil {
		c.app.Close()
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
