package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"FundRadar/internal/model"
	"FundRadar/internal/pipeline"
	"FundRadar/internal/render"
)

// Run produces one scorecard.
type Run interface {
	Run(ctx context.Context, rng model.DateRange) (*pipeline.Result, error)
}

// RangeFunc resolves the date range at the moment a run fires.
type RangeFunc func(now time.Time) (model.DateRange, error)

// Scheduler fires scorecard runs on a cron spec and renders each result.
// Overlapping fires are skipped.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Run
	Range    RangeFunc
	Renderer render.Renderer
	Options  render.Options
	Out      io.Writer
	Ctx      context.Context

	mu      sync.Mutex
	running bool
	bg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Run, rng RangeFunc, r render.Renderer, opts render.Options, out io.Writer) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Range:    rng,
		Renderer: r,
		Options:  opts,
		Out:      out,
		Ctx:      ctx,
	}
}

// Register adds the scorecard run on spec (six fields, seconds first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register scorecard task: %w", err)
	}
	log.Info().Str("cron", spec).Msg("scorecard task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for running tasks, including one
// started by RunNowAsync, to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.bg.Wait()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the scorecard task immediately.
func (s *Scheduler) RunNow() error {
	return s.run()
}

// RunNowAsync starts the scorecard task in the background. Stop waits for it.
func (s *Scheduler) RunNowAsync() {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if err := s.run(); err != nil {
			log.Error().Err(err).Msg("initial scorecard run failed")
		}
	}()
}

func (s *Scheduler) runTask() {
	if err := s.run(); err != nil {
		log.Error().Err(err).Msg("scheduled scorecard run failed")
	}
}

var errBusy = errors.New("scorecard run already in progress")

func (s *Scheduler) run() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn().Msg("previous scorecard run still active, skipping")
		return errBusy
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	rng, err := s.Range(time.Now())
	if err != nil {
		return fmt.Errorf("resolve range: %w", err)
	}
	log.Info().Str("range", rng.String()).Msg("running scorecard task")

	res, err := s.Runner.Run(s.Ctx, rng)
	if err != nil {
		return err
	}
	if err := s.Renderer.Render(s.Out, res, s.Options); err != nil {
		return fmt.Errorf("render scorecard: %w", err)
	}
	return nil
}
