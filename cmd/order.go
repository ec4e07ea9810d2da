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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pizzahunt/pizzahunt/config"
	"github.com/pizzahunt/pizzahunt/offline"
)

// orderKit wires the offline client pieces around one local queue.
type orderKit struct {
	store      *offline.Store
	api        *offline.HTTPClient
	dispatcher *offline.Dispatcher
	client     *offline.Client
	out        io.Writer
}

func newOrderKit(conf config.OfflineConfig, out io.Writer) (*orderKit, error) {
	store, err := offline.Open(conf.QueuePath)
	if err != nil {
		return nil, err
	}

	var opts []offline.HTTPClientOption
	if conf.APIKey != "" {
		opts = append(opts, offline.WithAPIKey(conf.APIKey))
	}
	remote := offline.NewHTTPClient(conf.ServerURL, opts...)

	notifier := offline.NotifierFunc(func(_ context.Context, message string) {
		fmt.Fprintln(out, message)
	})

	return &orderKit{
		store:      store,
		api:        remote,
		dispatcher: offline.NewDispatcher(store, remote, offline.WithNotifier(notifier)),
		client:     offline.NewClient(remote, store),
		out:        out,
	}, nil
}

func (k *orderKit) Close() error {
	return k.store.Close()
}

func (k *orderKit) submit(ctx context.Context, pizza offline.PizzaSubmission) error {
	res, err := k.client.SubmitPizza(ctx, pizza)
	if err != nil {
		return err
	}
	if res.Queued {
		fmt.Fprintf(k.out, "server unreachable, pizza saved offline (#%d)\n", res.Key)
		return nil
	}
	return k.printJSON(res.Pizza)
}

func (k *orderKit) flush(ctx context.Context) error {
	res, err := k.dispatcher.Flush(ctx)
	if err != nil {
		return err
	}
	switch res.Status {
	case offline.FlushEmpty:
		fmt.Fprintln(k.out, "no saved pizzas to submit")
	case offline.FlushSkipped:
		fmt.Fprintln(k.out, "a flush is already running")
	}
	return nil
}

func (k *orderKit) list(ctx context.Context) error {
	records, err := k.store.Drain(ctx)
	if err != nil {
		return err
	}
	return k.printJSON(records)
}

func (k *orderKit) clear(ctx context.Context) error {
	if err := k.store.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(k.out, "offline queue cleared")
	return nil
}

// watch flushes every time the server becomes reachable, until ctx is done.
func (k *orderKit) watch(ctx context.Context, conf config.OfflineConfig) error {
	monitor := offline.NewMonitor(
		offline.NewHTTPChecker(conf.ServerURL, conf.CheckTimeout()),
		func(ctx context.Context) {
			if _, err := k.dispatcher.Flush(ctx); err != nil {
				logrus.WithError(err).Warn("flush after reconnect failed, records kept")
			}
		},
		offline.WithCheckInterval(conf.CheckInterval()),
	)

	logrus.WithFields(logrus.Fields{
		"server":   conf.ServerURL,
		"queue":    k.store.Path(),
		"interval": conf.CheckInterval(),
	}).Info("watching for connectivity")

	err := monitor.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (k *orderKit) printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(k.out, string(data))
	return nil
}

// withOrderKit opens the queue for the duration of fn.
func withOrderKit(app *pizzaHuntInstance, fn func(ctx context.Context, k *orderKit) error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	k, err := newOrderKit(app.cnf.Offline, os.Stdout)
	if err != nil {
		log.Fatalf("Error opening offline queue: %v", err)
	}
	defer func() {
		if err := k.Close(); err != nil {
			log.Printf("Error closing offline queue: %v", err)
		}
	}()

	if err := fn(ctx, k); err != nil {
		log.Fatal(err)
	}
}

// orderCommands is the offline-first client: pizzas are posted directly and
// saved locally when the server cannot be reached.
func orderCommands(app *pizzaHuntInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "submit pizzas, saving them offline when the server is unreachable",
	}

	cmd.AddCommand(orderSubmitCommand(app))
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "submit every saved pizza in one batch",
		Run: func(cmd *cobra.Command, args []string) {
			withOrderKit(app, func(ctx context.Context, k *orderKit) error { return k.flush(ctx) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "submit saved pizzas whenever the server comes back online",
		Run: func(cmd *cobra.Command, args []string) {
			withOrderKit(app, func(ctx context.Context, k *orderKit) error { return k.watch(ctx, app.cnf.Offline) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "print the pizzas saved offline",
		Run: func(cmd *cobra.Command, args []string) {
			withOrderKit(app, func(ctx context.Context, k *orderKit) error { return k.list(ctx) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "drop every pizza saved offline",
		Run: func(cmd *cobra.Command, args []string) {
			withOrderKit(app, func(ctx context.Context, k *orderKit) error { return k.clear(ctx) })
		},
	})

	return cmd
}

func orderSubmitCommand(app *pizzaHuntInstance) *cobra.Command {
	var pizza offline.PizzaSubmission

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "order a pizza",
		Run: func(cmd *cobra.Command, args []string) {
			withOrderKit(app, func(ctx context.Context, k *orderKit) error { return k.submit(ctx, pizza) })
		},
	}

	cmd.Flags().StringVar(&pizza.PizzaName, "name", "", "pizza name")
	cmd.Flags().StringVar(&pizza.CreatedBy, "by", "", "who is ordering")
	cmd.Flags().StringVar(&pizza.Size, "size", "", "pizza size, defaults to Large")
	cmd.Flags().StringSliceVar((*[]string)(&pizza.Toppings), "topping", nil, "topping, repeatable")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}
