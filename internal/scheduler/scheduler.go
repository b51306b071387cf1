package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"StockLab/internal/analysis"
	"StockLab/internal/notifier"
)

// Sender delivers reports; *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendDocument(ctx context.Context, path, caption string) error
}

// Options are the configured defaults each task and command starts from.
type Options struct {
	VWAP       analysis.VWAPOptions
	EMA        analysis.EMAOptions
	Volatility analysis.VolatilityOptions
	Relative   analysis.RelativeOptions
	Snapshot   analysis.SnapshotOptions
	Sentiment  analysis.SentimentOptions
	Optimize   analysis.OptimizeOptions
}

// Validate checks every analysis default.
func (o Options) Validate() error {
	return errors.Join(
		o.VWAP.Validate(),
		o.EMA.Validate(),
		o.Volatility.Validate(),
		o.Relative.Validate(),
		o.Snapshot.Validate(),
		o.Sentiment.Validate(),
		o.Optimize.Validate(),
	)
}

// Scheduler runs analyses on cron schedules and on Telegram commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *analysis.Runner
	Notifier Sender
	Options  Options
	Ctx      context.Context
	Now      func() time.Time

	// analyses are single-threaded; cron and polling take turns
	mu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *analysis.Runner, sender Sender, opts Options) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: sender,
		Options:  opts,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// RegisterAll registers the snapshot, sentiment and optimize tasks. An empty
// spec leaves that task unscheduled.
func (s *Scheduler) RegisterAll(snapshotCron, sentimentCron, optimizeCron string) error {
	tasks := []struct {
		name string
		spec string
		fn   func()
	}{
		{"snapshot", snapshotCron, s.snapshotTask},
		{"sentiment", sentimentCron, s.sentimentTask},
		{"optimize", optimizeCron, s.optimizeTask},
	}
	for _, t := range tasks {
		if t.spec == "" {
			continue
		}
		if _, err := s.Cron.AddFunc(t.spec, t.fn); err != nil {
			return fmt.Errorf("register %s task: %w", t.name, err)
		}
		log.Info().Str("task", t.name).Str("spec", t.spec).Msg("task registered")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunSnapshotNow executes the snapshot task immediately (RUN_ON_START).
func (s *Scheduler) RunSnapshotNow() {
	s.snapshotTask()
}

func (s *Scheduler) snapshotTask() {
	log.Info().Msg("running snapshot task")
	s.trySend(s.snapshot(s.Ctx, s.Options.Snapshot))
}

func (s *Scheduler) sentimentTask() {
	log.Info().Msg("running sentiment task")
	s.trySend(s.sentiment(s.Ctx, s.Options.Sentiment))
}

func (s *Scheduler) optimizeTask() {
	log.Info().Msg("running optimize task")
	s.trySend(s.optimize(s.Ctx, s.Options.Optimize))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i] // /vwap@StockLabBot
	}
	args := upper(fields[1:])

	switch name {
	case "/snapshot":
		opts := s.Options.Snapshot
		if len(args) > 0 {
			opts.Symbols = args
		}
		return s.snapshot(ctx, opts)
	case "/sentiment":
		opts := s.Options.Sentiment
		if len(args) > 0 {
			opts.Tickers = args
		}
		return s.sentiment(ctx, opts)
	case "/optimize":
		return s.optimize(ctx, s.Options.Optimize)
	case "/vwap":
		opts := s.Options.VWAP
		if len(args) > 0 {
			opts.Symbol = args[0]
		}
		return s.run(ctx, "vwap", func() (string, string, error) {
			res, err := s.Runner.RunVWAP(ctx, opts)
			if err != nil {
				return "", "", err
			}
			return notifier.FormatVWAP(res), res.ChartPath, nil
		})
	case "/ema":
		opts := s.Options.EMA
		if len(args) > 0 {
			opts.Symbol = args[0]
		}
		return s.run(ctx, "ema", func() (string, string, error) {
			res, err := s.Runner.RunEMA(ctx, opts)
			if err != nil {
				return "", "", err
			}
			return notifier.FormatEMA(res), res.ChartPath, nil
		})
	case "/volatility":
		opts := s.Options.Volatility
		if len(args) > 0 {
			opts.Symbol = args[0]
		}
		return s.run(ctx, "volatility", func() (string, string, error) {
			res, err := s.Runner.RunVolatility(ctx, opts)
			if err != nil {
				return "", "", err
			}
			return notifier.FormatVolatility(res), res.ChartPath, nil
		})
	case "/relative":
		opts := s.Options.Relative
		if len(args) > 0 {
			opts.Symbol = args[0]
		}
		if len(args) > 1 {
			opts.Benchmark = args[1]
		}
		return s.run(ctx, "relative", func() (string, string, error) {
			res, err := s.Runner.RunRelative(ctx, opts)
			if err != nil {
				return "", "", err
			}
			return notifier.FormatRelative(res), res.ChartPath, nil
		})
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) snapshot(ctx context.Context, opts analysis.SnapshotOptions) string {
	return s.run(ctx, "snapshot", func() (string, string, error) {
		res, err := s.Runner.RunSnapshot(ctx, opts)
		if err != nil {
			return "", "", err
		}
		return notifier.FormatSnapshot(res, s.Now()), "", nil
	})
}

func (s *Scheduler) sentiment(ctx context.Context, opts analysis.SentimentOptions) string {
	return s.run(ctx, "sentiment", func() (string, string, error) {
		res, err := s.Runner.RunSentiment(ctx, opts)
		if err != nil {
			return "", "", err
		}
		return notifier.FormatSentiment(res), "", nil
	})
}

func (s *Scheduler) optimize(ctx context.Context, opts analysis.OptimizeOptions) string {
	return s.run(ctx, "optimize", func() (string, string, error) {
		res, err := s.Runner.RunOptimize(ctx, opts)
		if err != nil {
			return "", "", err
		}
		return notifier.FormatOptimize(res), res.ChartPath, nil
	})
}

// run serialises one analysis, uploads its chart if any, and turns failures
// into an error report.
func (s *Scheduler) run(ctx context.Context, what string, fn func() (report, chartPath string, err error)) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, chartPath, err := fn()
	if err != nil {
		log.Error().Err(err).Str("analysis", what).Msg("analysis failed")
		return notifier.FormatError(what, err)
	}
	if chartPath != "" && s.Notifier != nil {
		if err := s.Notifier.SendDocument(ctx, chartPath, what); err != nil {
			log.Warn().Err(err).Str("path", chartPath).Msg("send chart failed")
		}
	}
	return report
}

func (s *Scheduler) trySend(text string) {
	if text == "" || s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

func upper(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ToUpper(strings.TrimSpace(a))
	}
	return out
}
