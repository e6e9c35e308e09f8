// Package menu implements the interactive numbered text menu.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/pricing"
	"crypto-tracker/internal/reporting"
	"crypto-tracker/internal/resolver"
	"crypto-tracker/internal/tracker"
)

// Tracker is the subset of tracker.Tracker the menu drives.
type Tracker interface {
	Watchlist(ctx context.Context) domain.Watchlist
	WatchlistPrices(ctx context.Context) ([]pricing.Line, error)
	Prices(ctx context.Context, inputs []string) (tracker.PricesResult, error)
	AddCoins(ctx context.Context, inputs []string) (tracker.AddResult, error)
	RemoveCoins(ctx context.Context, inputs []string) (tracker.RemoveResult, error)
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

var _ Tracker = (*tracker.Tracker)(nil)

// errQuit ends the session when input is exhausted.
var errQuit = errors.New("input closed")

// Menu reads choices from in and writes user-facing text to out.
type Menu struct {
	tracker Tracker
	in      *bufio.Scanner
	out     io.Writer
	logger  *zap.Logger
}

// New creates a Menu. A nil logger disables logging.
func New(t Tracker, in io.Reader, out io.Writer, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{tracker: t, in: bufio.NewScanner(in), out: out, logger: logger}
}

// Run shows the menu until the user exits, input ends or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		choice, ok := m.prompt("\nEnter a number: ")
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case "1":
			err = m.previousSelection(ctx)
		case "2":
			err = m.refreshLoop(ctx, func() { m.showTop(ctx, 10) })
		case "3":
			err = m.refreshLoop(ctx, func() { m.showTop(ctx, 50) })
		case "4":
			err = m.refreshLoop(ctx, func() { m.showTop(ctx, 100) })
		case "5":
			err = m.inputSelection(ctx)
		case "6":
			err = m.addCoins(ctx)
		case "7":
			err = m.removeCoins(ctx)
		case "8":
			m.println("\nGoodbye!")
			return nil
		default:
			m.println("\nInvalid choice, try again!")
		}

		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) printMenu() {
	m.println("\nPlease select an option")
	m.println("1. Load previous selection")
	m.println("2. Top 10")
	m.println("3. Top 50")
	m.println("4. Top 100")
	m.println("5. Input your selection")
	m.println("6. Add coins to the previous selection")
	m.println("7. Remove coins from the previous selection")
	m.println("8. Exit")
}

// previousSelection shows watchlist prices, offering to add coins when the
// watchlist is empty.
func (m *Menu) previousSelection(ctx context.Context) error {
	if m.tracker.Watchlist(ctx).IsEmpty() {
		m.println("\nNo previously saved coins found.")
		answer, ok := m.prompt("Would you like to add coins to track now? (y/n): ")
		if !ok {
			return errQuit
		}
		if strings.EqualFold(answer, "y") {
			return m.addCoins(ctx)
		}
		return nil
	}
	return m.refreshLoop(ctx, func() { m.showWatchlist(ctx) })
}

func (m *Menu) inputSelection(ctx context.Context) error {
	text, ok := m.prompt("\nWhat coins would you like to check? (Comma-separated) ")
	if !ok {
		return errQuit
	}
	inputs := resolver.SplitInput(text)
	if len(inputs) == 0 {
		m.println("No coins entered.")
		return nil
	}
	return m.refreshLoop(ctx, func() { m.showPrices(ctx, inputs) })
}

// AlreadyTracked is shown when every resolved coin was already in the
// selection.
const AlreadyTracked = "All of those coins are already in your selection."

func (m *Menu) addCoins(ctx context.Context) error {
	text, ok := m.prompt("\nWhat coins would you like to add to track? (Comma-separated) ")
	if !ok {
		return errQuit
	}
	inputs := resolver.SplitInput(text)
	if len(inputs) == 0 {
		m.println("No coins entered.")
		return nil
	}

	res, err := m.tracker.AddCoins(ctx, inputs)
	m.reportUnresolved(res.Resolutions)
	if err != nil {
		m.printf("Could not save your selection: %v\n", err)
		return nil
	}

	ids := resolver.Resolved(res.Resolutions)
	if len(ids) == 0 {
		return nil
	}
	if len(res.Added) == 0 {
		m.println(AlreadyTracked)
	} else {
		m.printf("Coins '%s' added!\n", strings.Join(domain.Strings(res.Added), ", "))
	}
	return m.refreshLoop(ctx, func() { m.showWatchlist(ctx) })
}

func (m *Menu) removeCoins(ctx context.Context) error {
	text, ok := m.prompt("\nWhat coins would you like to remove? ")
	if !ok {
		return errQuit
	}

	res, err := m.tracker.RemoveCoins(ctx, resolver.SplitInput(text))
	if err != nil {
		m.printf("Could not save your selection: %v\n", err)
		return nil
	}
	for _, input := range res.Unmatched {
		m.printf("'%s' is not in your selection.\n", input)
	}
	if len(res.Removed) == 0 {
		m.println("\nNo coins were removed.")
		return nil
	}
	m.println("\nCoins have been removed!")
	return nil
}

// refreshLoop runs show, then repeats it until the user picks the menu.
func (m *Menu) refreshLoop(ctx context.Context, show func()) error {
	show()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		answer, ok := m.prompt("\nMenu or Refresh? (m/r): ")
		if !ok {
			return errQuit
		}
		switch strings.ToLower(answer) {
		case "m":
			return nil
		case "r":
			show()
		default:
			m.println("Invalid choice. Please enter 'm' for Menu or 'r' for Refresh.")
		}
	}
}

func (m *Menu) showWatchlist(ctx context.Context) {
	m.println("\nLoading previous selection and fetching prices:")
	lines, err := m.tracker.WatchlistPrices(ctx)
	if err != nil {
		m.fetchFailed(err)
		return
	}
	m.printf("%s", reporting.RenderWatchlistText(lines))
}

func (m *Menu) showPrices(ctx context.Context, inputs []string) {
	res, err := m.tracker.Prices(ctx, inputs)
	m.reportUnresolved(res.Resolutions)
	if err != nil {
		m.fetchFailed(err)
		return
	}
	if len(res.Lines) == 0 {
		return
	}
	m.println("")
	m.printf("%s", reporting.RenderWatchlistText(res.Lines))
}

func (m *Menu) showTop(ctx context.Context, n int) {
	entries, err := m.tracker.Top(ctx, n)
	if err != nil {
		m.fetchFailed(err)
		return
	}
	m.printf("\nTop %d Cryptocurrencies and their Prices (by Rank):\n\n", n)
	m.printf("%s", reporting.RenderLeaderboardText(entries))
}

func (m *Menu) reportUnresolved(results []resolver.Resolution) {
	for _, r := range results {
		switch {
		case r.OK():
		case errors.Is(r.Err, domain.ErrNotFound):
			m.printf("Could not find a coin matching '%s'.\n", r.Input)
		default:
			m.printf("Could not look up '%s': %v\n", r.Input, r.Err)
		}
	}
}

func (m *Menu) fetchFailed(err error) {
	m.logger.Warn("fetch failed", zap.Error(err))
	m.printf("Error fetching data: %v\n", err)
}

// prompt writes label and reads one trimmed line. ok is false at end of
// input.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}
