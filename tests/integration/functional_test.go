//go:build functional

// end to end test
// expects `obfuscator` to be built and in PATH,
// along with minio, which this test will run in the background.

package main_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gulducat/go-run-programs/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const students = "student_id,name,course,graduation_date,email_address\n" +
	"1234,John Smith,Software,2024-03-31,j.smith@email.com\n" +
	"5678,Jane Doe,Data,2024-06-30,j.doe@email.com\n"

const studentsObfuscated = "student_id,name,course,graduation_date,email_address\n" +
	"1234,***,Software,2024-03-31,***\n" +
	"5678,***,Data,2024-06-30,***\n"

func TestFunctionalLocal(t *testing.T) {
	testTable := map[string]struct {
		file   string
		input  string
		flags  []string
		expect string
		code   int
	}{
		"csv": {
			file:   "students.csv",
			input:  students,
			flags:  []string{"-pii_fields", "name,email_address"},
			expect: studentsObfuscated,
		},
		"json": {
			file:   "student.json",
			input:  `{"student_id":1234,"name":"John Smith","contact":{"email_address":"j.smith@email.com"}}`,
			flags:  []string{"-pii_fields", "name", "email_address"},
			expect: `{"student_id":1234,"name":"***","contact":{"email_address":"***"}}`,
		},
		"yaml": {
			file:   "student.yaml",
			input:  "student_id: 1234\nname: John Smith\n",
			flags:  []string{"-pii_fields", "name"},
			expect: "student_id: 1234\nname: '***'\n",
		},
		"unsupported": {
			file:  "student.txt",
			input: "John Smith",
			flags: []string{"-pii_fields", "name"},
			code:  32,
		},
	}

	for name, tc := range testTable {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			in := filepath.Join(tmpDir, tc.file)
			out := filepath.Join(tmpDir, "out_"+tc.file)
			require.NoError(t, os.WriteFile(in, []byte(tc.input), 0o600))

			output, code := runObfuscator(t, append([]string{"-input_file_path", in, "-output_file_path", out}, tc.flags...))
			require.Equal(t, tc.code, code, output)
			if tc.code != 0 {
				assert.NoFileExists(t, out)
				return
			}

			assert.Contains(t, output, "File successfully obfuscated and saved to "+out)
			res, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, string(res))
		})
	}
}

func TestFunctionalMinIO(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "obfuscator")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "obfuscator-secret")
	t.Setenv("AWS_REGION", "us-east-1")

	t.Log("starting minio")
	stop, err := program.RunFromHCL(context.Background(), "go-run-programs.hcl")
	t.Cleanup(stop)
	require.NoError(t, err)

	ctx := context.Background()
	client := minioClient(t, ctx)
	for _, bucket := range []string{"raw", "clean"} {
		_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		require.NoError(t, err)
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String("raw"),
		Key:    aws.String("2024/students.csv"),
		Body:   bytes.NewReader([]byte(students)),
	})
	require.NoError(t, err)

	// email_address comes from minio.hcl
	output, code := runObfuscator(t, []string{
		"-input_file_path", "s3://raw/2024/students.csv",
		"-output_file_path", "s3://clean/2024/students.csv",
		"-config", "minio.hcl",
		"-pii_fields", "name",
	})
	require.Equal(t, 0, code, output)

	obj, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String("clean"), Key: aws.String("2024/students.csv")})
	require.NoError(t, err)
	defer obj.Body.Close()
	res, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, studentsObfuscated, string(res))

	t.Run("missing object", func(t *testing.T) {
		output, code := runObfuscator(t, []string{
			"-input_file_path", "s3://raw/nope.csv",
			"-output_file_path", "s3://clean/nope.csv",
			"-config", "minio.hcl",
		})
		assert.Equal(t, 34, code, output)
	})
}

func minioClient(t *testing.T, ctx context.Context) *s3.Client {
	t.Helper()
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	require.NoError(t, err)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("http://127.0.0.1:9000")
		o.UsePathStyle = true
	})
}

// runObfuscator assumes "obfuscator" is already built and is in PATH.
func runObfuscator(t *testing.T, flags []string) (string, int) {
	t.Helper()
	args := append([]string{"run"}, flags...)
	t.Log("running obfuscator:", args)

	out, err := exec.Command("obfuscator", args...).CombinedOutput()
	t.Logf("obfuscator output:\n%s", out)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode()
	}
	require.NoError(t, err)
	return string(out), 0
}
