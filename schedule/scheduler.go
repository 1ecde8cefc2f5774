// Package schedule plays animations at times given by cron specs.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mdouchement/eyectl"
	"github.com/mdouchement/eyectl/eyes"
	"github.com/mdouchement/logger"
	"github.com/robfig/cron/v3"
)

type Player interface {
	Play(ctx context.Context, seq []eyes.Animation) error
}

type Scheduler struct {
	cron   *cron.Cron
	player Player
	ctx    context.Context
}

// New registers all the schedules. Specs use the standard 5 fields format or descriptors like `@hourly`.
func New(player Player, schedules []*eyectl.Schedule) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		player: player,
		ctx:    context.Background(),
	}

	for i, schedule := range schedules {
		_, err := s.cron.AddFunc(schedule.Spec, func() { s.execute(schedule) })
		if err != nil {
			return nil, fmt.Errorf("schedules[%d]: %s: %w", i, strconv.Quote(schedule.Spec), err)
		}
	}

	return s, nil
}

// Start runs the schedules until Stop is called. Plays are done with ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx

	log := logger.LogWith(ctx)
	for _, e := range s.cron.Entries() {
		log.Infof("Schedule #%d next run at %s", e.ID, e.Schedule.Next(time.Now()).Format(time.DateTime))
	}

	s.cron.Start()
}

// Stop waits for running plays to complete.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) execute(schedule *eyectl.Schedule) {
	log := logger.LogWith(s.ctx)
	log.Infof("Running schedule %s: %v", strconv.Quote(schedule.Spec), schedule.Animations)

	if err := s.player.Play(s.ctx, schedule.Animations); err != nil {
		log.WithError(err).Errorf("Could not play schedule %s", strconv.Quote(schedule.Spec))
	}
}
