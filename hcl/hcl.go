// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/mitchellh/go-homedir"

	"github.com/pii-obfuscator/obfuscator/storage"
)

// HCL is the optional configuration file of the obfuscator CLI.
type HCL struct {
	PIIFields []string `hcl:"pii_fields,optional" json:"pii_fields"`
	S3        *S3      `hcl:"s3,block" json:"s3"`
	GCS       *GCS     `hcl:"gcs,block" json:"gcs"`
}

type S3 struct {
	Region   string `hcl:"region,optional" json:"region"`
	Endpoint string `hcl:"endpoint,optional" json:"endpoint"`
	CAFile   string `hcl:"ca_file,optional" json:"ca_file"`
	CAPath   string `hcl:"ca_path,optional" json:"ca_path"`
}

type GCS struct {
	CredentialsFile string `hcl:"credentials_file,optional" json:"credentials_file"`
	Project         string `hcl:"project,optional" json:"project"`
}

// Parse takes a file path and decodes the file from disk into HCL types.
func Parse(path string) (HCL, error) {
	var h HCL
	err := hclsimple.DecodeFile(path, nil, &h)
	if err != nil {
		return HCL{}, err
	}
	return h, nil
}

// StorageConfig maps the s3 and gcs blocks onto the storage backends' settings. Missing blocks leave the defaults.
// File paths may start with ~, which is expanded to the user's home directory.
func (h HCL) StorageConfig() (storage.Config, error) {
	var cfg storage.Config
	if h.S3 != nil {
		caFile, err := homedir.Expand(h.S3.CAFile)
		if err != nil {
			return storage.Config{}, fmt.Errorf("s3.ca_file: %w", err)
		}
		caPath, err := homedir.Expand(h.S3.CAPath)
		if err != nil {
			return storage.Config{}, fmt.Errorf("s3.ca_path: %w", err)
		}
		cfg.S3 = storage.S3Config{
			Region:   h.S3.Region,
			Endpoint: h.S3.Endpoint,
			CAFile:   caFile,
			CAPath:   caPath,
		}
	}
	if h.GCS != nil {
		credentials, err := homedir.Expand(h.GCS.CredentialsFile)
		if err != nil {
			return storage.Config{}, fmt.Errorf("gcs.credentials_file: %w", err)
		}
		cfg.GCS = storage.GCSConfig{
			CredentialsFile: credentials,
			Project:         h.GCS.Project,
		}
	}
	return cfg, nil
}
