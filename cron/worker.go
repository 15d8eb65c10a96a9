package cron

import (
	"context"
	"log"
	"time"

	"randevu/config"
	appointmentRepo "randevu/database/repository/appointment"

	"github.com/hibiken/asynq"
)

const TypePurgeSlotKeys = "slotkeys:purge"

// InitPurgeWorker runs the async worker that prunes slot-key markers for dates
// that have passed. Markers are only ever consulted for future availability,
// so yesterday's keys are dead weight in a publicly-read collection. The
// appointment records themselves are never touched.
func InitPurgeWorker(repo appointmentRepo.AppointmentRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePurgeSlotKeys, handlePurgeTask(repo))

	go func() {
		log.Println("[PurgeWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PurgeWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PurgeWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register("@daily", asynq.NewTask(TypePurgeSlotKeys, nil)); err != nil {
		log.Printf("[PurgeWorker] failed to register purge schedule: %v", err)
		return
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("[PurgeWorker] scheduler stopped: %v", err)
		}
	}()
}

func handlePurgeTask(repo appointmentRepo.AppointmentRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		today := time.Now().UTC().Format("2006-01-02")
		purged, err := repo.PurgeExpiredKeys(ctx, today)
		if err != nil {
			log.Printf("[PurgeWorker] purge failed: %v", err)
			return err
		}
		log.Printf("[PurgeWorker] purged %d expired slot keys (before %s)", purged, today)
		return nil
	}
}
