package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/younwookim/gridsync/internal/application/replay"
	"github.com/younwookim/gridsync/internal/application/scene/playing"
	"github.com/younwookim/gridsync/internal/infrastructure/config"
	"github.com/younwookim/gridsync/internal/infrastructure/manifest"
)

// ReplayResult is where a headless replay ended
type ReplayResult struct {
	Frames int
	Ticks  uint64
	Stage  string
	X, Y   int
	Events int
}

func (r ReplayResult) String() string {
	return fmt.Sprintf("%d frames, %d ticks, %s (%d,%d), %d events",
		r.Frames, r.Ticks, r.Stage, r.X, r.Y, r.Events)
}

// simulateReplay runs recorded input through the Playing scene without a
// window. Each frame is fed its own recorded tick length.
func simulateReplay(data replay.ReplayData, stages playing.StageSource, cfg *config.GameConfig, lib *manifest.Library, logger *zap.Logger) (ReplayResult, error) {
	rep := replay.NewReplayer(data)
	p, err := playing.New(playing.Options{
		Config:  cfg,
		Stages:  stages,
		Library: lib,
		Input:   rep,
		Logger:  logger,
		Seed:    rep.Seed(),
		Stage:   rep.Stage(),
	})
	if err != nil {
		return ReplayResult{}, eris.Wrap(err, "failed to start replay")
	}
	p.OnEnter()

	for !rep.Done() {
		if _, err := p.Update(rep.NextTick()); err != nil {
			return ReplayResult{}, eris.Wrapf(err, "replay failed at frame %d", rep.CurrentFrame())
		}
	}

	pos := p.World().GetPlayerPosition()
	return ReplayResult{
		Frames: rep.TotalFrames(),
		Ticks:  p.Pipeline().Ticks(),
		Stage:  p.StageID(),
		X:      pos.X,
		Y:      pos.Y,
		Events: p.Events(),
	}, nil
}

// replayMain runs a replay file and returns the process exit code
func replayMain(path string, stages playing.StageSource, cfg *config.GameConfig, lib *manifest.Library, logger *zap.Logger) int {
	data, err := replay.LoadReplay(path)
	if err != nil {
		logger.Error("failed to load replay", zap.String("path", path), zap.Error(err))
		return 1
	}

	res, err := simulateReplay(*data, stages, cfg, lib, logger)
	if err != nil {
		logger.Error("replay failed", zap.String("path", path), zap.Error(err))
		return 1
	}

	logger.Info("replay finished",
		zap.String("path", path),
		zap.Int64("seed", data.Seed),
		zap.Stringer("result", res),
	)
	fmt.Println(res)
	return 0
}
