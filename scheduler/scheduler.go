/*
 * MIT License
 *
 * Copyright (c) 2024-2026 The Sidereal Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package scheduler drives the transient actor timers. Timers live only in
// process memory: they are lost when their actor deactivates, which is why
// deactivation cancels them here.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	gerrors "github.com/sidereal-io/sidereal/errors"
	"github.com/sidereal-io/sidereal/log"
)

// TimerScheduler schedules one-shot and periodic timer fires on top of a
// quartz scheduler. Every scheduled entry is addressed by an opaque key; the
// runtime uses "type/id/name" so cancelation per actor is a prefix-free
// lookup.
type TimerScheduler struct {
	// helps lock concurrent access
	mu sync.Mutex

	scheduler quartz.Scheduler
	// states whether the scheduler has started or not
	started *atomic.Bool
	// tracks the job key of every live timer
	keys map[string]*quartz.JobKey
	// define the logger
	logger log.Logger
}

// New creates an instance of TimerScheduler. The underlying quartz scheduler
// is built on Start.
func New(logger log.Logger) *TimerScheduler {
	return &TimerScheduler{
		started: atomic.NewBool(false),
		keys:    make(map[string]*quartz.JobKey),
		logger:  logger,
	}
}

// Start starts the scheduler
func (x *TimerScheduler) Start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.scheduler == nil {
		scheduler, err := quartz.NewStdScheduler()
		if err != nil {
			return err
		}
		x.scheduler = scheduler
	}

	x.scheduler.Start(ctx)
	x.started.Store(x.scheduler.IsStarted())
	x.logger.Info("timer scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (x *TimerScheduler) Stop(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.started.Store(false)
	x.keys = make(map[string]*quartz.JobKey)
	if x.scheduler != nil {
		x.scheduler.Stop()
		x.scheduler.Wait(ctx)
	}
	x.logger.Info("timer scheduler stopped")
}

// Schedule registers a fire callback under the given key. The first fire
// happens after due; when period is positive the callback keeps firing every
// period after that, otherwise the entry is one-shot. Scheduling an existing
// key replaces it.
func (x *TimerScheduler) Schedule(key string, due, period time.Duration, fire func(context.Context)) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return gerrors.ErrSchedulerNotStarted
	}

	if existing, ok := x.keys[key]; ok {
		x.deleteJob(existing)
	}

	if period <= 0 {
		return x.scheduleLocked(key, quartz.NewRunOnceTrigger(due), func(ctx context.Context) {
			fire(ctx)
			x.forget(key)
		})
	}

	// periodic timers fire once after due, then repeat every period
	return x.scheduleLocked(key, quartz.NewRunOnceTrigger(due), func(ctx context.Context) {
		fire(ctx)
		x.reschedule(key, period, fire)
	})
}

// Cancel removes the timer registered under the given key, if any.
func (x *TimerScheduler) Cancel(key string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if jobKey, ok := x.keys[key]; ok {
		x.deleteJob(jobKey)
		delete(x.keys, key)
	}
}

// Scheduled returns true when a timer is registered under the given key.
func (x *TimerScheduler) Scheduled(key string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.keys[key]
	return ok
}

// scheduleLocked schedules fn under key. Callers must hold the lock.
func (x *TimerScheduler) scheduleLocked(key string, trigger quartz.Trigger, fn func(context.Context)) error {
	jobKey := quartz.NewJobKey(key)
	functionJob := job.NewFunctionJob(func(ctx context.Context) (bool, error) {
		fn(ctx)
		return true, nil
	})

	if err := x.scheduler.ScheduleJob(quartz.NewJobDetail(functionJob, jobKey), trigger); err != nil {
		x.logger.Errorf("failed to schedule timer=(%s): %v", key, err)
		return err
	}

	x.keys[key] = jobKey
	return nil
}

// reschedule switches a periodic timer to its steady interval once the due
// fire happened. The timer may have been canceled in between, in which case
// nothing is scheduled.
func (x *TimerScheduler) reschedule(key string, period time.Duration, fire func(context.Context)) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.keys[key]; !ok {
		return
	}
	if !x.started.Load() {
		return
	}

	if err := x.scheduleLocked(key, quartz.NewSimpleTrigger(period), fire); err != nil {
		x.logger.Errorf("failed to reschedule timer=(%s): %v", key, err)
	}
}

// forget drops a one-shot timer after it fired.
func (x *TimerScheduler) forget(key string) {
	x.mu.Lock()
	delete(x.keys, key)
	x.mu.Unlock()
}

func (x *TimerScheduler) deleteJob(jobKey *quartz.JobKey) {
	if err := x.scheduler.DeleteJob(jobKey); err != nil {
		x.logger.Debugf("failed to delete timer job=(%s): %v", jobKey.String(), err)
	}
}
