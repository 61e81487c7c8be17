package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ivlev/animchat/internal/config"
	"github.com/ivlev/animchat/internal/director"
	"github.com/ivlev/animchat/internal/engine"
	"github.com/ivlev/animchat/internal/generator"
	"github.com/ivlev/animchat/internal/source"
	"github.com/ivlev/animchat/internal/store"
)

var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrRenderUnavailable is returned by Render until both a plan and an image exist.
	ErrRenderUnavailable = errors.New("render needs a plan and an uploaded image")
)

// Renderer composes a plan over one still into a video.
type Renderer interface {
	Render(ctx context.Context, plan director.Plan, imagePath string) (*engine.Artifact, error)
}

// TurnResult is what one chat turn produced.
type TurnResult struct {
	Reply    string        `json:"reply"`
	Plan     director.Plan `json:"plan"`
	Warnings []string      `json:"warnings,omitempty"`
	Fallback bool          `json:"fallback"`
	State    State         `json:"state"`
}

// Session is the state of one user interaction: chat log, the current plan,
// the uploaded image and the last rendered artifact. Every method is safe for
// concurrent use; calls are serialized.
type Session struct {
	mu sync.Mutex

	cfg      *config.Config
	gen      generator.Generator
	renderer Renderer
	log      store.MessageLog
	logger   *zap.Logger

	state     State
	plan      director.Plan
	imagePath string
	artifact  *engine.Artifact
}

func New(cfg *config.Config, gen generator.Generator, r Renderer, log store.MessageLog, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		cfg:      cfg,
		gen:      gen,
		renderer: r,
		log:      log,
		logger:   logger,
		state:    Idle,
	}
}

// Submit runs one chat turn. The new plan always replaces the previous one;
// a turn that yields no plan leaves the session without one.
func (s *Session) Submit(ctx context.Context, prompt string) (TurnResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return TurnResult{}, ErrEmptyPrompt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.log.Append(ctx, store.RoleUser, prompt); err != nil {
		return TurnResult{}, err
	}
	s.state = PlanRequested
	s.artifact = nil

	var res TurnResult
	text, err := s.gen.Generate(ctx, generator.SystemPrompt, generator.UserPrompt(prompt))
	if err != nil {
		s.logger.Warn("generation failed", zap.String("backend", s.gen.Name()), zap.Error(err))
		res.Warnings = append(res.Warnings, fmt.Sprintf("The assistant could not answer: %v", err))
		if !s.cfg.LLM.FallbackPlan {
			return s.finishTurn(ctx, res, nil, res.Warnings[0])
		}
		text = generator.FallbackPlanText
		res.Fallback = true
		res.Warnings = append(res.Warnings, "Using the built-in fallback plan.")
	}

	plan, err := director.Parse(text)
	if err != nil {
		s.logger.Warn("plan parse failed", zap.Error(err))
		res.Warnings = append(res.Warnings, "Could not parse a scene plan from the reply.")
		return s.finishTurn(ctx, res, nil, text)
	}

	if err := director.WritePlanJSON(plan, s.cfg.PlanPath()); err != nil {
		s.logger.Warn("failed to write plan file", zap.String("path", s.cfg.PlanPath()), zap.Error(err))
		res.Warnings = append(res.Warnings, "The plan could not be saved for download.")
	}
	return s.finishTurn(ctx, res, plan, text)
}

func (s *Session) finishTurn(ctx context.Context, res TurnResult, plan director.Plan, reply string) (TurnResult, error) {
	s.plan = plan
	if plan.Empty() {
		s.state = PlanFailed
		if err := os.Remove(s.cfg.PlanPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("failed to remove stale plan file", zap.Error(err))
		}
	} else {
		s.state = PlanReady
	}

	res.Reply = reply
	res.Plan = plan
	res.State = s.state
	if _, err := s.log.Append(ctx, store.RoleAssistant, reply); err != nil {
		return res, err
	}
	s.logger.Info("turn complete",
		zap.String("state", s.state.String()),
		zap.Int("scenes", len(plan)),
		zap.Bool("fallback", res.Fallback),
	)
	return res, nil
}

// SetImage points the session at an image already on disk.
func (s *Session) SetImage(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imagePath = path
	s.artifact = nil
	return nil
}

// SaveImage stores an upload in the output directory and selects it.
func (s *Session) SaveImage(r io.Reader, filename string) (string, error) {
	path, err := source.SaveUpload(r, filename, s.cfg.OutputDir)
	if err != nil {
		return "", err
	}
	return path, s.SetImage(path)
}

func (s *Session) CanRender() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canRender()
}

func (s *Session) canRender() bool {
	return !s.plan.Empty() && s.imagePath != ""
}

// Render blocks until the preview is written or fails.
func (s *Session) Render(ctx context.Context) (*engine.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canRender() {
		return nil, ErrRenderUnavailable
	}
	s.state = RenderRequested

	art, err := s.renderer.Render(ctx, s.plan, s.imagePath)
	if err != nil {
		s.state = RenderFailed
		return nil, err
	}
	s.state = RenderComplete
	s.artifact = art
	return art, nil
}

func (s *Session) Plan() director.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(director.Plan(nil), s.plan...)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ImagePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imagePath
}

// Artifact returns the last successful render, or nil.
func (s *Session) Artifact() *engine.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

func (s *Session) Messages(ctx context.Context) ([]store.ChatMessage, error) {
	return s.log.List(ctx)
}

// Reset clears chat history and the plan. The uploaded image is kept.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.log.Reset(ctx); err != nil {
		return err
	}
	s.plan = nil
	s.artifact = nil
	s.state = Idle
	return nil
}
