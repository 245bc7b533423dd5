// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// refreshJobTimeout bounds one full refresh cycle across all sources.
const refreshJobTimeout = 10 * time.Minute

// newScheduler builds a cron scheduler that refreshes the dataset on the
// given schedule. Overlapping ticks join the in-flight refresh instead of
// stacking, so no skip-if-running wrapper is needed.
func newScheduler(logger zerolog.Logger, spec string, runner Runner) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cronLogger{logger: logger}))
	if _, err := c.AddFunc(spec, refreshJob(logger, runner)); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return c, nil
}

func refreshJob(logger zerolog.Logger, runner Runner) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
		defer cancel()

		start := time.Now()
		st, err := runner.Refresh(ctx)
		if err != nil {
			logger.Error().
				Err(err).
				Str("event", "schedule.refresh_failed").
				Dur("elapsed", time.Since(start)).
				Msg("scheduled refresh failed")
			return
		}
		logger.Info().
			Str("event", "schedule.refresh_complete").
			Str("job_id", st.JobID).
			Int("total", st.Total).
			Int("added", st.Added).
			Int("updated", st.Updated).
			Dur("elapsed", time.Since(start)).
			Msg("scheduled refresh complete")
	}
}

// cronLogger adapts zerolog to the cron.Logger interface. Routine
// scheduler chatter lands on debug, failures on error.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(cronFields(keysAndValues)).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(cronFields(keysAndValues)).Msg(msg)
}

func cronFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
