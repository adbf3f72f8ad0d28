// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reporting.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestRegisterCommonFlags(t *testing.T) {
	var flags CommonFlags
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterCommonFlags(flagSet, &flags)

	if err := flagSet.Parse([]string{"--config", "/etc/reporting.yaml", "--log-format=text", "--version"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if flags.ConfigPath != "/etc/reporting.yaml" || flags.LogFormat != "text" || !flags.ShowVersion {
		t.Errorf("flags = %+v", flags)
	}
	if flags.LogLevel != "info" {
		t.Errorf("LogLevel default = %q, want info", flags.LogLevel)
	}
}

func TestBootstrap(t *testing.T) {
	path := writeConfig(t, `
environment: staging
node:
  application: api
  internal_hostname: api-1.internal
report:
  uri: http://collector.internal/
  tags:
    region: eu
`)

	var stderr bytes.Buffer
	boot, err := Bootstrap(CommonFlags{ConfigPath: path, LogFormat: "json", LogLevel: "info"}, &stderr)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if boot.Node.Application != "api" || boot.Node.Environment != "staging" || boot.Node.Pool != "general" {
		t.Errorf("Node = %+v", boot.Node)
	}
	if got := boot.Client.UploadURL(); got != "http://collector.internal/api/v1/datapoints" {
		t.Errorf("UploadURL = %q", got)
	}
	if region, _ := boot.Client.InstanceTags().Get("region"); region != "eu" {
		t.Errorf("region tag = %q", region)
	}
	if boot.Clock == nil {
		t.Error("Clock is nil")
	}

	boot.Logger.Info("hello")
	if !strings.Contains(stderr.String(), `"msg":"hello"`) {
		t.Errorf("logger did not write JSON to stderr: %q", stderr.String())
	}
}

func TestBootstrapUsesEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, `
environment: development
node:
  application: worker
  internal_hostname: worker-1
report:
  enabled: false
`)
	t.Setenv("REPORTING_CONFIG", path)

	boot, err := Bootstrap(CommonFlags{LogFormat: "text", LogLevel: "warn"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if boot.Client.Enabled() {
		t.Error("client should be disabled")
	}
}

func TestBootstrapErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		flags  CommonFlags
		errSub string
	}{
		{
			name:   "bad log format",
			flags:  CommonFlags{LogFormat: "xml", LogLevel: "info"},
			errSub: "--log-format",
		},
		{
			name:   "bad log level",
			flags:  CommonFlags{LogFormat: "json", LogLevel: "loud"},
			errSub: "--log-level",
		},
		{
			name:   "missing uri",
			config: "environment: production\nnode:\n  application: api\n  internal_hostname: h\n",
			flags:  CommonFlags{LogFormat: "json", LogLevel: "info"},
			errSub: "report.uri is required",
		},
		{
			name:   "bad environment name",
			config: "environment: Prod\nnode:\n  application: api\n  internal_hostname: h\nreport:\n  uri: http://c/\n",
			flags:  CommonFlags{LogFormat: "json", LogLevel: "info"},
			errSub: "node environment",
		},
		{
			name:   "unparsable yaml",
			config: "environment: [",
			flags:  CommonFlags{LogFormat: "json", LogLevel: "info"},
			errSub: "loading config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := tt.flags
			if tt.config != "" {
				flags.ConfigPath = writeConfig(t, tt.config)
			}
			_, err := Bootstrap(flags, &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q does not contain %q", err, tt.errSub)
			}
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var output bytes.Buffer
	logger, err := NewLogger(&output, "text", "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	if strings.Contains(output.String(), "quiet") || !strings.Contains(output.String(), "loud") {
		t.Errorf("level filtering wrong: %q", output.String())
	}
}
