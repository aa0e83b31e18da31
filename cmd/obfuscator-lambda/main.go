// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/pii-obfuscator/obfuscator/lambda"
	"github.com/pii-obfuscator/obfuscator/storage"
)

func main() {
	l := lambda.ConfigureLogging("obfuscator")

	s3, err := storage.NewS3(context.Background(), lambda.StorageConfig(), l)
	if err != nil {
		l.Error("Failed to set up S3", "error", err)
		os.Exit(1)
	}

	awslambda.Start(lambda.NewHandler(storage.Mux{"s3": s3}, l).Handle)
}
