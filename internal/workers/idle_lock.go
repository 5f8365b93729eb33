// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-zk-vault/internal/logger"
)

const defaultIdleCheckInterval = 15 * time.Second

type idleLockWorker struct {
	locker   IdleLocker
	timeout  time.Duration
	interval time.Duration
	logger   *logger.Logger
}

// NewIdleLockWorker returns a Worker that clears the session key once it has
// been idle for timeout. The check runs every interval; a non-positive
// interval defaults to 15 seconds, capped at timeout. A non-positive timeout
// yields a worker that only waits for ctx.
func NewIdleLockWorker(locker IdleLocker, timeout, interval time.Duration, log *logger.Logger) Worker {
	if interval <= 0 {
		interval = defaultIdleCheckInterval
	}
	if timeout > 0 && interval > timeout {
		interval = timeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &idleLockWorker{
		locker:   locker,
		timeout:  timeout,
		interval: interval,
		logger:   log,
	}
}

// Run implements Worker.
func (w *idleLockWorker) Run(ctx context.Context) error {
	if w.timeout <= 0 {
		<-ctx.Done()
		return nil
	}

	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if w.locker.ClearIfIdle(w.timeout) {
				w.logger.Info().Str("func", "idleLockWorker.Run").Msg("session auto-locked")
			}
		}
	}
}
