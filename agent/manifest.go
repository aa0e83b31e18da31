// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package agent

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pii-obfuscator/obfuscator/op"
)

// Manifest is the metadata of a run. It names fields but never carries field values, so it is safe to keep next to
// the obfuscated output.
type Manifest struct {
	ID        string    `json:"run_id"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Format    string    `json:"format"`
	Fields    []string  `json:"pii_fields"`
	Redacted  int       `json:"redacted_values"`
	Start     time.Time `json:"started_at"`
	End       time.Time `json:"ended_at"`
	Duration  string    `json:"duration"`
	NumErrors int       `json:"num_errors"`
	Ops       []op.Op   `json:"ops"`
}

// WriteJSON writes the manifest as indented JSON.
func (m Manifest) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
