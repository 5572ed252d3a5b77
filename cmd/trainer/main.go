package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/config"
	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/logger"
	"github.com/aliskhannn/itpass-trainer/internal/service"
)

const usage = `Usage: trainer <command> [flags]

Commands:
  migrate                         create the database schema
  import FILE...                  import questions from JSON or CSV files
  list                            list categories and exam years
  quiz [flags]                    start an interactive quiz
  stats [--session ID] [--category ID]
  weak [--threshold PERCENT]      questions you tend to get wrong
  trend [--days N]                daily correct rate
  deactivate ID                   hide a question from future quizzes
  housekeeping [--once]           close stale sessions and refresh statistics
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, lg)
	if err != nil {
		lg.Error("failed to initialize", zap.Error(err))
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			lg.Error("failed to close store", zap.Error(err))
		}
	}()

	if err := a.run(ctx, cmd, args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			lg.Error("command failed", zap.String("command", cmd), zap.Error(err))
		}
		return err
	}

	return nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "migrate":
		// Schema is applied while opening the store.
		fmt.Println("schema is up to date")
		return nil
	case "import":
		return a.runImport(ctx, args)
	case "list":
		return a.runList(ctx)
	case "quiz":
		return a.runQuiz(ctx, args)
	case "stats":
		return a.runStats(ctx, args)
	case "weak":
		return a.runWeak(ctx, args)
	case "trend":
		return a.runTrend(ctx, args)
	case "deactivate":
		return a.runDeactivate(ctx, args)
	case "housekeeping":
		return a.runHousekeeping(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) runImport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("import: no files given")
	}

	for _, path := range args {
		records, err := a.loader.LoadFile(path)
		if err != nil {
			return err
		}

		inputs, invalid := a.loader.Inputs(records)
		report, err := a.questions.BulkAddQuestionsReport(ctx, inputs)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}

		fmt.Printf("%s: %d records, %d imported, %d duplicates, %d invalid\n",
			path, len(records), report.Imported, report.Skipped, len(invalid)+len(report.Errors))
		for _, e := range invalid {
			fmt.Printf("  %v\n", e)
		}
		for _, e := range report.Errors {
			fmt.Printf("  %s\n", e)
		}
	}

	return nil
}

func (a *app) runList(ctx context.Context) error {
	categories, err := a.questions.GetCategories(ctx)
	if err != nil {
		return err
	}
	years, err := a.questions.GetYears(ctx)
	if err != nil {
		return err
	}
	count, err := a.questions.CountQuestions(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d active questions\n\nCategories:\n", count)
	for _, c := range categories {
		fmt.Printf("  %3d  %s\n", c.ID, c.Name)
	}
	fmt.Println("\nExam years:")
	for _, y := range years {
		fmt.Printf("  %3d  %s\n", y.ID, y.Label())
	}

	return nil
}

func (a *app) runQuiz(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("quiz", pflag.ContinueOnError)
	mode := fs.StringP("mode", "m", string(entities.ModeRandom), "random, by_year, by_category, review or mock_test")
	count := fs.IntP("count", "n", a.cfg.Quiz.DefaultQuestionCount, "number of questions (ignored by mock_test)")
	categories := fs.Int64Slice("category", nil, "category IDs")
	years := fs.Int64Slice("year", nil, "exam year IDs")
	dMin := fs.Int("difficulty-min", entities.MinDifficulty, "lowest difficulty")
	dMax := fs.Int("difficulty-max", entities.MaxDifficulty, "highest difficulty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := entities.ParseQuizMode(*mode)
	if err != nil {
		return err
	}

	opts := service.StartOptions{
		Mode:          m,
		CategoryIDs:   *categories,
		YearIDs:       *years,
		DifficultyMin: *dMin,
		DifficultyMax: *dMax,
	}
	if fs.Changed("count") {
		opts.QuestionCount = count
	}

	return a.terminal.RunQuiz(ctx, opts)
}

func (a *app) runStats(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	session := fs.String("session", "", "session ID")
	category := fs.Int64("category", 0, "category ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var categoryID *int64
	if fs.Changed("category") {
		categoryID = category
	}

	return a.terminal.ShowStats(ctx, *session, categoryID)
}

func (a *app) runWeak(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("weak", pflag.ContinueOnError)
	threshold := fs.Float64("threshold", a.cfg.Stats.WeakThreshold, "correct rate in percent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.terminal.ShowWeakPoints(ctx, *threshold)
}

func (a *app) runTrend(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("trend", pflag.ContinueOnError)
	days := fs.Int("days", a.cfg.Stats.TrendDays, "number of days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.terminal.ShowTrend(ctx, *days)
}

func (a *app) runDeactivate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("deactivate: expected one question ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}
	if err := a.questions.DeactivateQuestion(ctx, id); err != nil {
		return err
	}
	fmt.Printf("question %d deactivated\n", id)
	return nil
}

func (a *app) runHousekeeping(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("housekeeping", pflag.ContinueOnError)
	once := fs.Bool("once", false, "run once and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *once {
		n, err := a.housekeeper.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d stale sessions closed\n", n)
		return nil
	}

	return a.housekeeper.Start(ctx)
}
