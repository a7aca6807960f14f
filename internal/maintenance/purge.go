// Package maintenance runs the in-process housekeeping jobs.
package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// retention is how long soft-deleted projects linger before the purge
// removes them and their issues for good.
const retention = 30 * 24 * time.Hour

type Scheduler struct {
	db *pgxpool.Pool
}

func NewScheduler(db *pgxpool.Pool) *Scheduler {
	return &Scheduler{db: db}
}

// Start schedules the nightly purge (12:00 AM).
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 0 * * *", func() {
		s.runPurge()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Purge scheduler started (running nightly at 12:00AM)")
	c.Start()
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.Purge(ctx)
	if err != nil {
		log.Printf("Nightly purge failed: %v", err)
		return
	}
	log.Printf("Nightly purge removed %d expired projects", deleted)
}

// Purge hard-deletes projects soft-deleted longer than the retention
// period. Their issues go with them via the FK cascade.
func (s *Scheduler) Purge(ctx context.Context) (int64, error) {
	const q = `
delete from projects
where deleted_at is not null and deleted_at < now() - make_interval(secs => $1);
`
	ct, err := s.db.Exec(ctx, q, retention.Seconds())
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
