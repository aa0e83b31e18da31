// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package agent

// Config describes one obfuscation run. Input and Output are storage URIs (s3://bucket/key, gs://bucket/key,
// file:///path) or plain filesystem paths. The input's file extension selects the format, and the output is always
// written in the same format.
type Config struct {
	Input     string   `json:"input"`
	Output    string   `json:"output"`
	PIIFields []string `json:"pii_fields"`
}
