// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

// Package agent runs the obfuscation pipeline: fetch, decode, redact, encode and store.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/pii-obfuscator/obfuscator/format"
	"github.com/pii-obfuscator/obfuscator/location"
	"github.com/pii-obfuscator/obfuscator/op"
	"github.com/pii-obfuscator/obfuscator/redact"
	"github.com/pii-obfuscator/obfuscator/storage"
)

// Identifiers of the pipeline steps, in the order they run.
const (
	OpFetch  = "fetch"
	OpDecode = "decode"
	OpRedact = "redact"
	OpEncode = "encode"
	OpStore  = "store"
)

var pipeline = []string{OpFetch, OpDecode, OpRedact, OpEncode, OpStore}

// Agent runs a single obfuscation. It is not safe for concurrent use, and it is not meant to be reused.
type Agent struct {
	l       hclog.Logger
	gateway storage.Gateway

	ID       string
	Config   Config
	Format   string
	Redacted int
	Start    time.Time
	End      time.Time
	Ops      []op.Op
}

// NewAgent creates an Agent that reads and writes through gateway.
func NewAgent(config Config, gateway storage.Gateway, logger hclog.Logger) *Agent {
	id := uuid.NewString()
	return &Agent{
		l:       logger.Named("agent").With("run_id", id),
		gateway: gateway,
		ID:      id,
		Config:  config,
	}
}

// Run selects the format from the input's extension, then fetches, decodes, redacts, encodes and stores the file.
// The format is checked before any I/O. A failing step stops the run, so nothing is stored unless every earlier step
// succeeded. Errors are returned unmodified.
func (a *Agent) Run(ctx context.Context) error {
	a.Start = time.Now()
	defer a.recordEnd()

	adapter, err := format.ForPath(a.Config.Input)
	if err != nil {
		a.l.Error("Unsupported input format", "input", a.Config.Input, "error", err)
		for _, id := range pipeline {
			a.Ops = append(a.Ops, op.Skipped(id))
		}
		return err
	}
	a.Format = adapter.Name()

	fields := redact.NewFields(a.Config.PIIFields...)
	in := location.Parse(a.Config.Input)
	out := location.Parse(a.Config.Output)
	a.l.Info("Starting obfuscation", "input", in, "output", out, "format", a.Format, "pii_fields", fields.Names())

	var (
		data []byte
		doc  format.Document
	)
	steps := map[string]func() error{
		OpFetch: func() (err error) {
			data, err = a.gateway.Fetch(ctx, in)
			return err
		},
		OpDecode: func() (err error) {
			doc, err = adapter.Decode(data)
			return err
		},
		OpRedact: func() error {
			a.Redacted = doc.Redact(fields)
			return nil
		},
		OpEncode: func() (err error) {
			data, err = doc.Encode()
			return err
		},
		OpStore: func() error {
			return a.gateway.Store(ctx, out, data)
		},
	}

	for i, id := range pipeline {
		o := a.runStep(ctx, id, steps[id])
		a.Ops = append(a.Ops, o)
		if o.Error != nil {
			a.l.Error("Obfuscation step failed", "op", id, "error", o.Error)
			for _, rest := range pipeline[i+1:] {
				a.Ops = append(a.Ops, op.Skipped(rest))
			}
			return o.Error
		}
		a.l.Debug("Obfuscation step complete", "op", id, "duration", o.Duration())
	}

	a.l.Info("Obfuscation complete", "output", out, "redacted_values", a.Redacted, "bytes", len(data))
	return nil
}

func (a *Agent) runStep(ctx context.Context, id string, fn func() error) op.Op {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return op.New(id, op.Canceled, err, start, time.Now())
	}
	err := fn()
	return op.New(id, op.Success, err, start, time.Now())
}

func (a *Agent) recordEnd() {
	a.End = time.Now()
}

// Manifest summarises the run.
func (a *Agent) Manifest() Manifest {
	var numErrors int
	for _, o := range a.Ops {
		if o.Error != nil {
			numErrors++
		}
	}
	return Manifest{
		ID:        a.ID,
		Input:     a.Config.Input,
		Output:    a.Config.Output,
		Format:    a.Format,
		Fields:    redact.NewFields(a.Config.PIIFields...).Names(),
		Redacted:  a.Redacted,
		Start:     a.Start,
		End:       a.End,
		Duration:  fmt.Sprintf("%v seconds", a.End.Sub(a.Start).Seconds()),
		NumErrors: numErrors,
		Ops:       a.Ops,
	}
}
