package registrymain

import (
	"context"
	"fmt"

	"github.com/joincivil/civil-content-registry/pkg/ingest"
	"github.com/joincivil/civil-content-registry/pkg/model"
)

// RunIngest runs the ingester once and records the start of the run in the
// cron table. A run that fails part way is still recorded.
func RunIngest(ctx context.Context, ingester *ingest.Ingester, cron model.CronPersister) (*ingest.RunSummary, error) {
	summary, runErr := ingester.Run(ctx)
	if summary != nil {
		err := cron.UpdateTimestampOfLastRunForCron(summary.StartedAt.Unix())
		if err != nil {
			return summary, fmt.Errorf("Error updating last run in cron table: %v", err)
		}
	}
	return summary, runErr
}
