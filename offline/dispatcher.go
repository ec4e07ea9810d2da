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

package offline

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pizzahunt/pizzahunt/model"
)

// SubmittedMessage is shown once a queued batch has been accepted.
const SubmittedMessage = "All saved pizza has been submitted!"

var tracer = otel.Tracer("pizzahunt.offline")

// Queue is the part of the Store the dispatcher needs.
type Queue interface {
	Drain(ctx context.Context) ([]QueuedSubmission, error)
	Acknowledge(ctx context.Context, throughKey int64) (int64, error)
}

// Notifier tells the user something happened.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) { f(ctx, message) }

type logNotifier struct{}

func (logNotifier) Notify(_ context.Context, message string) {
	logrus.WithField("component", "dispatcher").Info(message)
}

type FlushStatus string

const (
	// FlushEmpty: nothing was queued, no request was made.
	FlushEmpty FlushStatus = "empty"
	// FlushSubmitted: the batch was accepted and acknowledged.
	FlushSubmitted FlushStatus = "submitted"
	// FlushSkipped: another flush was already running.
	FlushSkipped FlushStatus = "skipped"
	// FlushFailed: the batch was not accepted, the queue is unchanged.
	FlushFailed FlushStatus = "failed"
)

type FlushResult struct {
	Status    FlushStatus
	Submitted int
	Created   []model.Pizza
}

// Dispatcher moves queued submissions to the server in one batch.
type Dispatcher struct {
	queue    Queue
	api      PizzaAPI
	notifier Notifier
	inFlight atomic.Bool
}

type DispatcherOption func(*Dispatcher)

func WithNotifier(n Notifier) DispatcherOption {
	return func(d *Dispatcher) {
		d.notifier = n
	}
}

func NewDispatcher(queue Queue, api PizzaAPI, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		queue:    queue,
		api:      api,
		notifier: logNotifier{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Flush drains the queue and submits everything as one batch. Records are removed
// only after the server accepted the batch, and only those that were drained.
//
// At most one flush runs at a time; a call made while another is in flight returns
// FlushSkipped without touching the queue or the network.
func (d *Dispatcher) Flush(ctx context.Context) (FlushResult, error) {
	if !d.inFlight.CompareAndSwap(false, true) {
		logrus.WithField("component", "dispatcher").Debug("flush already in flight, skipping")
		return FlushResult{Status: FlushSkipped}, nil
	}
	defer d.inFlight.Store(false)

	ctx, span := tracer.Start(ctx, "Flush")
	defer span.End()

	records, err := d.queue.Drain(ctx)
	if err != nil {
		return d.fail(span, 0, errors.Wrap(err, "drain offline queue"))
	}
	span.SetAttributes(attribute.Int("pizzahunt.queued", len(records)))
	if len(records) == 0 {
		return FlushResult{Status: FlushEmpty}, nil
	}

	submissions, err := decodeSubmissions(records)
	if err != nil {
		return d.fail(span, len(records), err)
	}

	created, err := d.api.CreatePizzas(ctx, submissions)
	if err != nil {
		return d.fail(span, len(records), errors.Wrap(err, "submit queued pizzas"))
	}

	lastKey := records[len(records)-1].Key
	removed, err := d.queue.Acknowledge(ctx, lastKey)
	if err != nil {
		// The server has the batch; the records will be sent again next time.
		return d.fail(span, len(records), errors.Wrap(err, "acknowledge submitted pizzas"))
	}

	logrus.WithFields(logrus.Fields{
		"component": "dispatcher",
		"records":   len(records),
		"removed":   removed,
	}).Info("queued pizzas submitted")

	d.notifier.Notify(ctx, SubmittedMessage)
	return FlushResult{Status: FlushSubmitted, Submitted: len(records), Created: created}, nil
}

// Busy reports whether a flush is in flight.
func (d *Dispatcher) Busy() bool {
	return d.inFlight.Load()
}

func (d *Dispatcher) fail(span trace.Span, records int, err error) (FlushResult, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logrus.WithFields(logrus.Fields{
		"component": "dispatcher",
		"records":   records,
		"error":     err,
	}).Error("flush failed, queued pizzas kept")
	return FlushResult{Status: FlushFailed}, err
}

func decodeSubmissions(records []QueuedSubmission) ([]PizzaSubmission, error) {
	submissions := make([]PizzaSubmission, 0, len(records))
	for _, rec := range records {
		var s PizzaSubmission
		if err := json.Unmarshal(rec.Payload, &s); err != nil {
			return nil, errors.Wrapf(err, "decode queued record %d", rec.Key)
		}
		submissions = append(submissions, s)
	}
	return submissions, nil
}
