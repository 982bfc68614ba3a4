package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytshuffle/internal/shared"
	"github.com/desertthunder/ytshuffle/internal/tasks"
	"github.com/desertthunder/ytshuffle/internal/ui"
	"golang.org/x/sync/errgroup"
)

// runTUI runs the engine behind the progress TUI.
//
// Three goroutines share one errgroup: the bubbletea program, the engine (started once the
// model closes start) and a forwarder from the progress channel to the program. Quitting
// the program cancels the engine's context.
func (r *Runner) runTUI(ctx context.Context, engine *tasks.ShuffleEngine, opts tasks.RunOpts, service string, confirm bool) (*tasks.RunResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := make(chan struct{})
	model := ui.NewModel(ui.RunInfo{
		Service:  service,
		SourceID: opts.SourceID,
		Title:    shared.DestinationTitle(opts.TitlePrefix, time.Now()),
		Passes:   opts.Passes,
		DryRun:   opts.DryRun,
	}, start, confirm)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	progressCh := make(chan tasks.ProgressUpdate, 50)

	var (
		result *tasks.RunResult
		runErr error
		ran    bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-start:
		case <-gctx.Done():
			return nil
		}
		ran = true
		result, runErr = engine.Run(gctx, progressCh, opts)
		p.Send(ui.RunFinishedMsg(result, runErr))
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case update := <-progressCh:
				p.Send(ui.ProgressMsg(update))
			case <-gctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !ran {
		r.logger.Info("shuffle cancelled")
		return nil, nil
	}
	return result, runErr
}
