package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/animchat/internal/api"
	"github.com/ivlev/animchat/internal/director"
	"github.com/ivlev/animchat/internal/generator"
	"github.com/ivlev/animchat/internal/session"
	"github.com/ivlev/animchat/internal/store"
	"github.com/ivlev/animchat/internal/system"
)

var (
	serveAddr      string
	servePublicURL string

	planRender bool
	planImage  string
	planYAML   bool

	renderPlan  string
	renderImage string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat host over HTTP",
	RunE:  runServe,
}

var planCmd = &cobra.Command{
	Use:   "plan [idea]",
	Short: "Ask the generator for a scene plan and save it",
	Long: `Sends the idea to the configured generator, parses the reply into a scene
plan and writes animation_plan.json to the output directory.

Example:
  animchat plan "make the cat dance under moonlight" --render --image cat.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a saved plan over an image",
	Long: `Renders a plan file over a still image into the preview video.
Without flags the newest plan and the newest image in the output directory are used.`,
	RunE: runRender,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&servePublicURL, "public-url", "", "base URL encoded in preview QR codes")

	planCmd.Flags().BoolVar(&planRender, "render", false, "render the plan right away")
	planCmd.Flags().StringVar(&planImage, "image", "", "image to render the plan over (with --render)")
	planCmd.Flags().BoolVar(&planYAML, "yaml", false, "also export the plan as YAML under plans/")

	renderCmd.Flags().StringVar(&renderPlan, "plan", "", "plan file (.json, .yaml)")
	renderCmd.Flags().StringVar(&renderImage, "image", "", "still image or PDF")
}

func newSession(ctx context.Context) (*session.Session, generator.Generator, func(), error) {
	gen, err := generator.New(ctx, cfg, logger.Named("generator"))
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := store.NewSQLiteLog()
	if err != nil {
		return nil, nil, nil, err
	}
	sess := session.New(cfg, gen, newCompositor(), log, logger.Named("session"))
	return sess, gen, func() { log.Close() }, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}

	sess, gen, closeLog, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeLog()

	srv := api.NewServer(api.ServerConfig{
		Addr:      cfg.Addr,
		Session:   sess,
		Generator: gen.Name(),
		Version:   version,
		PublicURL: servePublicURL,
		Logger:    logger.Named("api"),
		StartTime: time.Now(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, _, closeLog, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeLog()

	res, err := sess.Submit(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	fmt.Println(res.Reply)

	if res.Plan.Empty() {
		return director.ErrParseFailure
	}
	logger.Info("plan saved", zap.String("path", cfg.PlanPath()), zap.Int("scenes", len(res.Plan)))

	if planYAML {
		path := director.ExportPath(cfg.OutputDir)
		if err := director.WritePlanYAML(res.Plan, path); err != nil {
			return err
		}
		logger.Info("plan exported", zap.String("path", path))
	}

	if !planRender {
		return nil
	}
	if planImage == "" {
		return errors.New("--render needs --image")
	}
	if err := sess.SetImage(planImage); err != nil {
		return err
	}
	art, err := sess.Render(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Preview: %s (%.2fs)\n", art.Path, art.Duration)
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	planPath := renderPlan
	if planPath == "" {
		latest, err := director.FindLatestPlan(cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("%w; pass --plan", err)
		}
		planPath = latest
	}
	plan, err := director.ReadPlan(planPath)
	if err != nil {
		return err
	}

	imagePath := renderImage
	if imagePath == "" {
		latest, err := system.FindLatestImage(cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("%w; pass --image", err)
		}
		imagePath = latest
	}

	logger.Info("rendering", zap.String("plan", planPath), zap.String("image", imagePath))
	art, err := newCompositor().Render(cmd.Context(), plan, imagePath)
	if err != nil {
		return err
	}
	fmt.Printf("Preview: %s (%.2fs)\n", art.Path, art.Duration)
	return nil
}
