// Command elocute scores a spoken take of a script and highlights where the
// delivery diverged.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/elocute/elocute/internal/config"
	"github.com/elocute/elocute/internal/observe"
	"github.com/elocute/elocute/internal/practice"
	"github.com/elocute/elocute/internal/render"
	"github.com/elocute/elocute/internal/store"
	"github.com/elocute/elocute/internal/wav"
	"github.com/elocute/elocute/pkg/provider/asr"
	"github.com/elocute/elocute/pkg/provider/asr/mock"
	"github.com/elocute/elocute/pkg/provider/asr/native"
	asrwhisper "github.com/elocute/elocute/pkg/provider/asr/whisper"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	scriptPath := flag.String("script", "", "path to the script text file to practice against")
	audioPath := flag.String("audio", "", "path to the recorded take (16 kHz mono 16-bit PCM WAV)")
	save := flag.Bool("save", false, "persist the scored session (requires storage.postgres_dsn)")
	list := flag.Int("list", 0, "print the N most recent saved sessions and exit")
	trendDays := flag.Int("trend", 0, "print per-day average scores for the last N days and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "elocute: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "elocute: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "elocute"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// History queries need only the store.
	if *list > 0 || *trendDays > 0 {
		return runHistory(ctx, cfg, *list, *trendDays)
	}

	if *scriptPath == "" || *audioPath == "" {
		fmt.Fprintln(os.Stderr, "elocute: both -script and -audio are required")
		flag.Usage()
		return 2
	}

	script, err := os.ReadFile(*scriptPath)
	if err != nil {
		slog.Error("failed to read script", "path", *scriptPath, "err", err)
		return 1
	}
	samples, err := wav.DecodeFile(*audioPath)
	if err != nil {
		slog.Error("failed to decode audio", "path", *audioPath, "err", err)
		return 1
	}

	rec, closeRec, err := buildRecognizer(cfg.Recognizer)
	if err != nil {
		slog.Error("failed to build recognizer", "name", cfg.Recognizer.Name, "err", err)
		return 1
	}
	defer closeRec()

	svc := practice.New(rec,
		practice.WithRecognizerName(string(cfg.Recognizer.Name)),
		practice.WithDecodeOptions(decodeOptions(cfg.Recognizer.Decode)),
	)

	g, ctx := errgroup.WithContext(ctx)

	// Optional Prometheus endpoint, alive for the duration of the evaluation.
	var metricsSrv *http.Server
	if addr := cfg.Server.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: addr, Handler: mux}
		g.Go(func() error {
			slog.Info("serving metrics", "addr", addr)
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	var ev *practice.Evaluation
	g.Go(func() error {
		defer func() {
			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}
		}()
		var err error
		ev, err = svc.Evaluate(ctx, string(script), samples)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("cancelled")
			return 130
		}
		slog.Error("evaluation failed", "err", err)
		return 1
	}

	printEvaluation(string(script), ev)

	if *save {
		if cfg.Storage.PostgresDSN == "" {
			slog.Error("-save requires storage.postgres_dsn in the config")
			return 1
		}
		id, err := saveSession(ctx, cfg.Storage.PostgresDSN, *scriptPath, *audioPath, string(script), ev)
		if err != nil {
			slog.Error("failed to save session", "err", err)
			return 1
		}
		fmt.Printf("\nsaved as session %d\n", id)
	}

	return 0
}

// buildRecognizer constructs the configured backend. The returned close
// function releases backend resources (a no-op for backends without any).
func buildRecognizer(rc config.RecognizerConfig) (asr.Recognizer, func(), error) {
	switch rc.Name {
	case config.RecognizerWhisper:
		var opts []asrwhisper.Option
		if rc.Model != "" {
			opts = append(opts, asrwhisper.WithModel(rc.Model))
		}
		rec, err := asrwhisper.New(rc.BaseURL, opts...)
		if err != nil {
			return nil, nil, err
		}
		return rec, func() {}, nil

	case config.RecognizerNative:
		var opts []native.Option
		if rc.Decode.Language != "" {
			opts = append(opts, native.WithLanguage(rc.Decode.Language))
		}
		rec, err := native.New(rc.ModelPath, opts...)
		if err != nil {
			return nil, nil, err
		}
		return rec, func() {
			if err := rec.Close(); err != nil {
				slog.Warn("recognizer close error", "err", err)
			}
		}, nil

	case config.RecognizerMock:
		return &mock.Recognizer{}, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown recognizer %q", rc.Name)
	}
}

func decodeOptions(dc config.DecodeConfig) asr.Options {
	return asr.Options{
		Language:            dc.Language,
		Temperature:         dc.Temperature,
		BeamSize:            dc.BeamSize,
		Timestamps:          dc.Timestamps,
		NoSpeechThreshold:   dc.NoSpeechThreshold,
		ConditionOnPrevText: dc.ConditionOnPrevText,
	}
}

// printEvaluation writes the metrics block and the highlighted texts.
func printEvaluation(script string, ev *practice.Evaluation) {
	r := ev.Result
	fmt.Printf("WER      %.3f  (%d sub, %d del, %d ins over %d words)\n",
		r.WER, r.Substitutions, r.Deletions, r.Insertions, r.RefWords)
	fmt.Printf("CER      %.3f\n", r.CER)
	fmt.Printf("Clarity  %.1f%%\n", r.Clarity*100)
	fmt.Printf("Score    %.1f / 5\n", r.Score)
	if r.SoundAlike > 0 {
		fmt.Printf("Sound-alike substitutions: %d\n", r.SoundAlike)
	}
	if len(ev.Segments) > 0 {
		fmt.Printf("Pace     %.0f wpm, %.0f%% pause", r.ArticulationRate, r.PauseRatio*100)
		if r.FilledPauses > 0 {
			fmt.Printf(", %d filled pauses", r.FilledPauses)
		}
		if r.AvgConfidence != nil {
			fmt.Printf(", confidence %.0f%%", *r.AvgConfidence*100)
		}
		fmt.Println()
	}

	fmt.Println("\nScript:")
	fmt.Println(render.Highlight(strings.TrimRight(script, "\n"), ev.ScriptSpans))
	fmt.Println("\nTranscript:")
	fmt.Println(render.Highlight(ev.Transcript, ev.TranscriptSpans))
	if ev.Degraded {
		fmt.Println("\n(highlighting unavailable for this take)")
	}
}

// saveSession persists the evaluation and returns the new session id.
func saveSession(ctx context.Context, dsn, scriptPath, audioPath, script string, ev *practice.Evaluation) (int64, error) {
	st, err := store.New(ctx, dsn)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	r := ev.Result
	sess := store.Session{
		ScriptName: strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath)),
		ScriptText: script,
		AudioPath:  audioPath,
		Transcript: ev.Transcript,
		WER:        r.WER,
		CER:        r.CER,
		Clarity:    r.Clarity,
		Score:      r.Score,
		Segments:   ev.Segments,

		AvgConfidence: r.AvgConfidence,
	}
	if len(ev.Segments) > 0 {
		sess.ArticulationRate = &r.ArticulationRate
		sess.PauseRatio = &r.PauseRatio
		sess.FilledPauses = &r.FilledPauses
	}
	id, err := st.Add(ctx, sess)
	if err != nil {
		return 0, err
	}
	observe.DefaultMetrics().SessionsStored.Add(ctx, 1)
	return id, nil
}

// runHistory handles the -list and -trend query modes.
func runHistory(ctx context.Context, cfg *config.Config, list, trendDays int) int {
	if cfg.Storage.PostgresDSN == "" {
		fmt.Fprintln(os.Stderr, "elocute: history queries require storage.postgres_dsn in the config")
		return 1
	}
	st, err := store.New(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		slog.Error("failed to open store", "err", err)
		return 1
	}
	defer st.Close()

	if list > 0 {
		sessions, err := st.List(ctx, list)
		if err != nil {
			slog.Error("failed to list sessions", "err", err)
			return 1
		}
		for _, s := range sessions {
			fmt.Printf("%6d  %s  %-20s  score %.1f  wer %.3f  clarity %.2f\n",
				s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.ScriptName, s.Score, s.WER, s.Clarity)
		}
		return 0
	}

	since := time.Now().AddDate(0, 0, -trendDays)
	points, err := st.ScoreTrend(ctx, since)
	if err != nil {
		slog.Error("failed to query score trend", "err", err)
		return 1
	}
	for _, p := range points {
		fmt.Printf("%s  %3d sessions  avg score %.2f  avg wer %.3f  avg clarity %.2f\n",
			p.Day.Format("2006-01-02"), p.Sessions, p.AvgScore, p.AvgWER, p.AvgClarity)
	}
	return 0
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
