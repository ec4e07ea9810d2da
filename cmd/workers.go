/*
Copyright 2024 Pizza Hunt Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/spf13/cobra"

	"github.com/pizzahunt/pizzahunt"
	"github.com/pizzahunt/pizzahunt/config"
)

const monitoringRoot = "/monitoring"

func initializeQueues(conf *config.Configuration) map[string]int {
	return map[string]int{conf.Queue.WebhookQueue: 1}
}

func initializeWorkerServer(conf *config.Configuration, redisOpt asynq.RedisClientOpt) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: conf.Queue.WorkerConcurrency,
		Queues:      initializeQueues(conf),
	})
}

func initializeTaskHandlers(conf *config.Configuration, mux *asynq.ServeMux) {
	mux.HandleFunc(conf.Queue.WebhookQueue, pizzahunt.ProcessWebhook)
}

// serveMonitoring exposes the asynqmon dashboard for the webhook queue.
func serveMonitoring(conf *config.Configuration, redisOpt asynq.RedisClientOpt) {
	h := asynqmon.New(asynqmon.Options{
		RootPath:     monitoringRoot,
		RedisConnOpt: redisOpt,
	})

	go func() {
		monitoringAddr := fmt.Sprintf(":%s", conf.Queue.MonitoringPort)
		log.Printf("Asynqmon server listening on %s%s", monitoringAddr, monitoringRoot)
		if err := http.ListenAndServe(monitoringAddr, h); err != nil {
			log.Fatalf("could not start asynqmon server: %v", err)
		}
	}()
}

// workerCommands starts the webhook delivery workers. They only need Redis.
func workerCommands(app *pizzaHuntInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start pizza hunt webhook workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conf := app.cnf

			shutdown, err := initializeObservability(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()

			redisOpt, err := pizzahunt.RedisClientOpt(conf)
			if err != nil {
				log.Fatalf("error parsing Redis URL: %v", err)
			}

			srv := initializeWorkerServer(conf, redisOpt)
			mux := asynq.NewServeMux()
			initializeTaskHandlers(conf, mux)

			serveMonitoring(conf, redisOpt)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
