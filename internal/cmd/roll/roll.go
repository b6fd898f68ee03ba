// Package roll parses roll command flags and drives the dice engine from
// the command line.
package roll

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/louisbranch/kobold-keeper/internal/dice/analytics"
	"github.com/louisbranch/kobold-keeper/internal/dice/engine"
	"github.com/louisbranch/kobold-keeper/internal/dice/roll"
	entrypoint "github.com/louisbranch/kobold-keeper/internal/platform/cmd"
	"github.com/louisbranch/kobold-keeper/internal/platform/encoding"
	apperrors "github.com/louisbranch/kobold-keeper/internal/platform/errors"
	"github.com/louisbranch/kobold-keeper/internal/random"
	"golang.org/x/text/message"
)

// ErrMissingNotation indicates the command was run without an expression.
var ErrMissingNotation = errors.New("dice notation is required")

// Config holds roll command configuration.
type Config struct {
	Engine engine.Config

	Scopes     []string `env:"ROLL_SCOPES" envSeparator:"," envDefault:"global"`
	Repeat     int      `env:"ROLL_REPEAT" envDefault:"1"`
	Locale     string   `env:"LOCALE" envDefault:"en-US"`
	OrderBy    string   `env:"ROLL_ORDER_BY"`
	Filter     string   `env:"ROLL_FILTER"`
	MinSamples int64    `env:"ROLL_MIN_SAMPLES"`
	JSON       bool     `env:"ROLL_JSON"`

	ShutdownTimeout time.Duration `env:"ROLL_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// Seed is nil when every roll should draw a fresh seed.
	Seed     *int64
	Notation string
}

// ParseConfig parses environment and flags into a Config. Flags override
// the environment only when given. Positional arguments are joined into the
// dice notation.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	var seed, scopes string
	fs.StringVar(&seed, "seed", "", "replay seed; repeated rolls use seed, seed+1, ...")
	fs.StringVar(&scopes, "scope", "", "comma-separated statistics scopes, e.g. character:grix,group:party (default $KOBOLD_KEEPER_ROLL_SCOPES or global)")
	fs.IntVar(&cfg.Repeat, "repeat", 0, "number of rolls per scope (default $KOBOLD_KEEPER_ROLL_REPEAT or 1)")
	fs.StringVar(&cfg.Locale, "locale", "", "locale for messages and numbers, en-US or pt-BR (default $KOBOLD_KEEPER_LOCALE or en-US)")
	fs.StringVar(&cfg.OrderBy, "order-by", "", "ranking order, e.g. \"luck_index desc\"")
	fs.StringVar(&cfg.Filter, "filter", "", "ranking filter, e.g. \"sample_count >= 10 AND luck_index > 1.0\"")
	fs.Int64Var(&cfg.MinSamples, "min-samples", 0, "minimum dice terms for a scope to be ranked")
	fs.BoolVar(&cfg.JSON, "json", false, "print each roll as canonical JSON")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 0, "how long to wait for pending spans on exit (default $KOBOLD_KEEPER_ROLL_SHUTDOWN_TIMEOUT or 5s)")
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}

	parsedSeed, err := random.ParseSeed(seed)
	if err != nil {
		return Config{}, err
	}
	cfg.Seed = parsedSeed
	if scopes == "" {
		scopes = strings.Join(cfg.Scopes, ",")
	}
	cfg.Scopes = splitScopes(scopes)
	cfg.Notation = strings.TrimSpace(strings.Join(fs.Args(), " "))
	if cfg.Repeat < 1 {
		return Config{}, fmt.Errorf("repeat must be at least 1, got %d", cfg.Repeat)
	}
	if cfg.ShutdownTimeout < 0 {
		return Config{}, fmt.Errorf("shutdown timeout must not be negative, got %s", cfg.ShutdownTimeout)
	}
	return cfg, nil
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, scope := range strings.Split(raw, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

// Run rolls cfg.Notation cfg.Repeat times for every scope, printing each
// roll and then the per-scope statistics to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	options := entrypoint.RunOptions{ShutdownTimeout: cfg.ShutdownTimeout}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceRoll, options, func(ctx context.Context) error {
		return run(ctx, engine.New(cfg.Engine), cfg, out)
	})
}

func run(ctx context.Context, e *engine.Engine, cfg Config, out io.Writer) error {
	if cfg.Notation == "" {
		return ErrMissingNotation
	}
	if len(cfg.Scopes) == 0 {
		return analytics.ErrEmptyScope
	}
	p := newPrinter(cfg.Locale)

	var step int64
	for _, scope := range cfg.Scopes {
		for range cfg.Repeat {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := e.RollExpression(ctx, cfg.Notation, nextSeed(cfg.Seed, step))
			if err != nil {
				return err
			}
			step++
			if _, err := e.RecordAndCompare(ctx, scope, result); err != nil {
				return err
			}
			if err := printResult(out, p, scope, result, cfg.JSON); err != nil {
				return err
			}
		}
	}

	for _, scope := range cfg.Scopes {
		snapshot, _ := e.Compare(scope)
		if err := printSnapshot(out, p, snapshot, cfg.Repeat); err != nil {
			return err
		}
	}

	if len(cfg.Scopes) > 1 || cfg.OrderBy != "" || cfg.Filter != "" {
		orderBy := cfg.OrderBy
		if orderBy == "" {
			orderBy = analytics.DefaultRankOrder
		}
		rankings, err := e.RankMatching(cfg.Filter, orderBy, cfg.MinSamples)
		if err != nil {
			return err
		}
		return printRankings(out, p, orderBy, rankings)
	}
	return nil
}

// nextSeed derives the seed of the step-th roll from the base seed.
// Overflow wraps, which keeps the sequence deterministic.
func nextSeed(base *int64, step int64) *int64 {
	if base == nil {
		return nil
	}
	seed := *base + step
	return &seed
}

func printResult(out io.Writer, p *message.Printer, scope string, result roll.Result, asJSON bool) error {
	if asJSON {
		data, err := encoding.CanonicalJSON(struct {
			Scope  string      `json:"scope"`
			Result roll.Result `json:"result"`
		}{Scope: scope, Result: result})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}

	fingerprint, err := engine.Fingerprint(result)
	if err != nil {
		return err
	}
	if _, err := p.Fprintf(out, msgRollLine, scope, result.Expression, strconv.FormatInt(result.Total, 10),
		strconv.FormatInt(result.Seed, 10), fingerprint); err != nil {
		return err
	}
	for _, term := range result.Terms {
		if _, err := fmt.Fprintf(out, "  %s\n", term); err != nil {
			return err
		}
	}
	return nil
}

func printSnapshot(out io.Writer, p *message.Printer, snapshot analytics.Snapshot, rolls int) error {
	if _, err := p.Fprintf(out, msgScopeHeader, snapshot.Scope, rolls); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if _, err := p.Fprintf(tw, msgTableHeader); err != nil {
		return err
	}
	for _, c := range snapshot.Dice {
		if err := printComparison(tw, p, c); err != nil {
			return err
		}
	}
	if err := printComparison(tw, p, snapshot.Overall); err != nil {
		return err
	}
	return tw.Flush()
}

func printComparison(w io.Writer, p *message.Printer, c analytics.Comparison) error {
	_, err := p.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.3f\t%d\t%d\n",
		c.Die, c.SampleCount, c.ObservedMean, c.TheoreticalMean, c.StdDev, c.LuckIndex, c.Min, c.Max)
	return err
}

func printRankings(out io.Writer, p *message.Printer, orderBy string, rankings []analytics.Ranking) error {
	if _, err := p.Fprintf(out, msgRankHeader, orderBy); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if _, err := p.Fprintf(tw, msgRankTableHeader); err != nil {
		return err
	}
	for i, r := range rankings {
		if _, err := p.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%+.2f\n", i+1, r.Scope, r.Overall.SampleCount, r.Overall.LuckIndex, r.Overall.Delta); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// ErrorMessage renders err for a user in locale. Errors outside the dice
// taxonomy keep their text after the generic message.
func ErrorMessage(err error, locale string) string {
	domainErr := engine.DomainError(err)
	if domainErr == nil {
		return ""
	}
	msg := domainErr.Localize(locale)
	if domainErr.Code == apperrors.CodeUnknown {
		msg += ": " + err.Error()
	}
	return msg
}
