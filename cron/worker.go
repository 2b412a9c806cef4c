package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/config"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/services/assistant"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/services/tasks"

	"github.com/hibiken/asynq"
)

// InitSessionCleanupWorker runs the async worker in background.
func InitSessionCleanupWorker(sessions assistant.SessionStore) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSessionCleanup, handleSessionCleanupTask(sessions))

	// Start async worker with retry logic
	go func() {
		log.Println("[SessionCleanupWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SessionCleanupWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SessionCleanupWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleSessionCleanupTask(sessions assistant.SessionStore) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.SessionCleanupPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[SessionCleanup] Invalid payload: %v", err)
			return err
		}

		log.Printf("[SessionCleanup] Clearing finished session %s", p.SessionID)

		if err := sessions.Reset(ctx, p.SessionID); err != nil {
			log.Printf("[SessionCleanup] Failed to clear session %s: %v", p.SessionID, err)
			return err
		}
		return nil
	}
}
