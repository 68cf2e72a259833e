package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"attritioninsight/ai"
	"attritioninsight/config"
	"attritioninsight/db"
	_ "attritioninsight/docs" // Swagger docs
	"attritioninsight/handlers"
	"attritioninsight/logger"
	"attritioninsight/models"
	"attritioninsight/plot"
	"attritioninsight/service"
	"attritioninsight/validation"
)

var (
	cfgFile   string
	sessionID string
	plotOut   string
	version   = "1.0.0"
)

var rootCmd = &cobra.Command{
	Use:     "attritioninsight",
	Short:   "Conversational analytics over an HR attrition dataset",
	Version: version,
	RunE:    runServer,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServer,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question from the terminal",
	Example: `  attritioninsight ask "show attrition by department" --plot-out dept.png
  attritioninsight ask "and by age?" --session my-session`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (default ./configs/config.yaml if present)")
	askCmd.Flags().StringVarP(&sessionID, "session", "s", "cli", "conversation to continue")
	askCmd.Flags().StringVarP(&plotOut, "plot-out", "o", "", "write the chart to this PNG file")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd, askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds everything both commands build from configuration.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	store    *db.DB
	llm      *ai.Client
	data     *service.DatasetHolder
	renderer *plot.Renderer
	charts   *service.ChartStorage
	sessions *service.Manager

	// sqlSource stays open for health checks when the dataset lives in SQL Server.
	sqlSource *service.SQLSource
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		zl.Warn("no model API key configured; set GROQ_API_KEY or ATTRITION_LLM_API_KEY")
	}

	store, err := db.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	frame, err := service.LoadDataset(ctx, cfg.Dataset, zl)
	if err != nil {
		// The service still starts; an upload can provide the dataset.
		zl.Warn("failed to load dataset", zap.String("source", cfg.Dataset.Source), zap.Error(err))
	} else {
		zl.Info("dataset loaded", zap.String("source", cfg.Dataset.Source),
			zap.Int("rows", frame.Rows()), zap.Int("columns", frame.Width()))
	}

	var charts *service.ChartStorage
	if cfg.Storage.ChartsDir != "" {
		charts, err = service.NewChartStorage(cfg.Storage.ChartsDir)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	a := &app{
		cfg:      cfg,
		log:      zl,
		store:    store,
		llm:      ai.New(cfg.LLM, zl),
		data:     service.NewDatasetHolder(frame, cfg.Dataset.Path, cfg.Dataset.Outcome),
		renderer: plot.NewRenderer(cfg.Render.Width, cfg.Render.Height, cfg.Render.DPI),
		charts:   charts,
	}
	if cfg.Dataset.Source == "sqlserver" {
		src, err := service.NewSQLServerSource(cfg.Dataset.SQLServer, cfg.Dataset.Query, zl)
		if err != nil {
			zl.Warn("SQL Server health checks unavailable", zap.Error(err))
		} else {
			a.sqlSource = src
		}
	}
	a.sessions = service.NewManager(&service.Pipeline{
		LLM:      a.llm,
		Data:     a.data,
		Renderer: a.renderer,
		Store:    store,
		Charts:   charts,
		Window:   cfg.LLM.ContextWindow,
		Log:      zl.Named("session"),
	}, cfg.Session.TTL, cfg.Session.CleanupInterval)
	return a, nil
}

func (a *app) close() {
	if a.sqlSource != nil {
		a.sqlSource.Close()
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close database", zap.Error(err))
	}
	_ = a.log.Sync()
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return err
	}
	defer a.close()

	gin.SetMode(a.cfg.Server.Mode)
	h := handlers.New(a.sessions, a.data, a.renderer, a.charts, a.llm, a.cfg.Server, a.log.Named("http"))
	if a.sqlSource != nil {
		h.WithSQLSource(a.sqlSource)
	}
	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      handlers.NewRouter(h, a.cfg.Server),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("graceful shutdown failed", zap.Error(err))
			return err
		}
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := validation.CheckSessionID(sessionID); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ --session %q: %v\n", sessionID, err)
		return err
	}

	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ %v\n", err)
		return err
	}
	defer a.close()

	question := args[0]
	for _, extra := range args[1:] {
		question += " " + extra
	}

	res := a.sessions.Chat(ctx, sessionID, question)
	if res.Status != models.StatusSuccess {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ %s\n", res.Response)
		return errors.New("question failed")
	}

	fmt.Println(res.Response)
	if res.PlotData == nil {
		return nil
	}

	info := color.New(color.FgCyan)
	info.Printf("\nChart: %s (%s", res.PlotData.DisplayTitle(), res.PlotData.Type)
	if res.PlotFile != "" {
		info.Printf(", archived as %s", res.PlotFile)
	}
	info.Println(")")

	if plotOut != "" {
		if err := os.WriteFile(plotOut, res.PlotImage, 0644); err != nil {
			color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ failed to write chart: %v\n", err)
			return err
		}
		color.New(color.FgGreen, color.Bold).Printf("✓ chart written to %s\n", plotOut)
	}
	return nil
}
