// Package registrymain contains the logic behind the registry binaries
package registrymain

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/golang/glog"
	"github.com/robfig/cron/v3"
)

const (
	checkRunSecs = 60
)

func checkCron(cr *cron.Cron) {
	entries := cr.Entries()
	for _, entry := range entries {
		log.Infof("Cron run times: prev: %v, next: %v\n", entry.Prev, entry.Next)
	}
}

// runCron runs job on the cron schedule until SIGINT or SIGTERM. A job still
// running when the signal arrives is waited for.
func runCron(spec string, job func()) error {
	cr := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := cr.AddFunc(spec, job)
	if err != nil {
		return err
	}
	cr.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(checkRunSecs * time.Second)
	defer ticker.Stop()

	// Blocks here while the cron process runs
	for {
		select {
		case <-ticker.C:
			checkCron(cr)
		case sig := <-sigs:
			log.Infof("Received %v, stopping cron", sig)
			<-cr.Stop().Done()
			return nil
		}
	}
}

func jobContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
