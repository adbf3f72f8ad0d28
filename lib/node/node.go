// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/bureau-foundation/reporting/lib/config"
)

// namePattern constrains environment and pool names.
var namePattern = regexp.MustCompile(`^[a-z0-9][_a-z0-9]*$`)

// Info is the identity of one service instance. All fields are
// required; use Validate before handing an Info to a reporter.
type Info struct {
	Application      string
	InternalHostname string
	Environment      string
	Pool             string
}

// Validate reports every missing or malformed field, joined into one
// error.
func (info Info) Validate() error {
	var errs []error

	if info.Application == "" {
		errs = append(errs, fmt.Errorf("node application is empty"))
	}
	if info.InternalHostname == "" {
		errs = append(errs, fmt.Errorf("node internal hostname is empty"))
	}
	if !namePattern.MatchString(info.Environment) {
		errs = append(errs, fmt.Errorf("node environment %q must match %s", info.Environment, namePattern))
	}
	if !namePattern.MatchString(info.Pool) {
		errs = append(errs, fmt.Errorf("node pool %q must match %s", info.Pool, namePattern))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// FromConfig builds and validates the identity described by cfg. An
// empty internal hostname defaults to os.Hostname().
func FromConfig(cfg *config.Config) (Info, error) {
	info := Info{
		Application:      cfg.Node.Application,
		InternalHostname: cfg.Node.InternalHostname,
		Environment:      string(cfg.Environment),
		Pool:             cfg.Node.Pool,
	}

	if info.InternalHostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return Info{}, fmt.Errorf("resolving hostname: %w", err)
		}
		info.InternalHostname = hostname
	}

	if err := info.Validate(); err != nil {
		return Info{}, err
	}
	return info, nil
}
