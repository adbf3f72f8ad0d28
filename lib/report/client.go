// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bureau-foundation/reporting/lib/config"
	"github.com/bureau-foundation/reporting/lib/measurement"
	"github.com/bureau-foundation/reporting/lib/netutil"
	"github.com/bureau-foundation/reporting/lib/node"
	"github.com/bureau-foundation/reporting/lib/version"
)

// UploadPath is resolved against the configured collector URI.
const UploadPath = "api/v1/datapoints"

// ContentType identifies the gzip-compressed JSON body.
const ContentType = "application/gzip"

// Doer sends an HTTP request. *http.Client satisfies it; the request
// body must be streamed, not buffered up front.
type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Outcome classifies what happened to one report.
type Outcome uint8

const (
	// OutcomeDisabled means reporting is turned off and no I/O was
	// attempted.
	OutcomeDisabled Outcome = iota

	// OutcomeDelivered means the collector answered 204 No Content.
	OutcomeDelivered

	// OutcomeRejected means the collector answered with any other
	// status.
	OutcomeRejected

	// OutcomeFailed means the request could not be built or sent, or
	// the body could not be encoded.
	OutcomeFailed
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeDisabled:
		return "disabled"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", o)
	}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the transport. The default is an *http.Client
// whose Timeout is the configured report timeout.
func WithHTTPClient(doer Doer) ClientOption {
	return func(client *Client) {
		client.httpClient = doer
	}
}

// WithLogger sets the logger for warnings and delivery debug lines.
// The default discards everything.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithEncoderOptions passes options to the Encoder of every report.
func WithEncoderOptions(options ...EncoderOption) ClientOption {
	return func(client *Client) {
		client.encoderOptions = append(client.encoderOptions, options...)
	}
}

// Client uploads measurement tables to the collector. The enabled
// flag, instance tags and upload URL are fixed at construction, so a
// Client is safe for concurrent Report calls; each call owns its own
// encoder and request body.
type Client struct {
	enabled        bool
	uploadURL      string
	instanceTags   InstanceTags
	httpClient     Doer
	logger         *slog.Logger
	userAgent      string
	encoderOptions []EncoderOption
}

// NewClient creates a Client for the given node identity and report
// configuration. It fails if the identity is incomplete or, when
// reporting is enabled, if the collector URI is not an absolute
// http(s) URI.
func NewClient(info node.Info, reportConfig config.ReportConfig, options ...ClientOption) (*Client, error) {
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("report client: %w", err)
	}

	client := &Client{
		enabled:      reportConfig.Enabled,
		instanceTags: NewInstanceTags(info, reportConfig.Tags),
		userAgent:    "bureau-reporting/" + version.Short(),
	}
	for _, option := range options {
		option(client)
	}

	if client.enabled {
		uploadURL, err := resolveUploadURL(reportConfig.URI)
		if err != nil {
			return nil, fmt.Errorf("report client: %w", err)
		}
		client.uploadURL = uploadURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: reportConfig.Timeout.Std()}
	}
	if client.logger == nil {
		client.logger = slog.New(slog.DiscardHandler)
	}

	return client, nil
}

// resolveUploadURL resolves UploadPath against base. As with any
// relative reference, a base without a trailing slash has its last
// path segment replaced.
func resolveUploadURL(base string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("collector URI is empty")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing collector URI: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("collector URI %q must use http or https", base)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("collector URI %q has no host", base)
	}
	return parsed.ResolveReference(&url.URL{Path: UploadPath}).String(), nil
}

// Enabled reports whether Report performs any I/O.
func (c *Client) Enabled() bool { return c.enabled }

// InstanceTags returns the tags attached to every data point.
func (c *Client) InstanceTags() InstanceTags { return c.instanceTags }

// UploadURL returns the resolved upload URL, or "" when disabled.
func (c *Client) UploadURL() string { return c.uploadURL }

// Report uploads table as one request, stamping every data point with
// timestampMillis (Unix milliseconds). It blocks until the collector
// answers or the transport gives up. Report never returns an error
// and never panics: failures are logged as warnings and reflected in
// the returned Outcome. When reporting is disabled it returns
// immediately without logging.
func (c *Client) Report(ctx context.Context, timestampMillis int64, table *measurement.Table) (outcome Outcome) {
	if !c.enabled {
		return OutcomeDisabled
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			c.logger.Warn("exception when trying to report stats", "error", fmt.Sprint(recovered))
			outcome = OutcomeFailed
		}
	}()

	body, err := NewBody(timestampMillis, table, c.instanceTags, c.encoderOptions...)
	if err != nil {
		c.logger.Warn("exception when trying to report stats", "error", err)
		return OutcomeFailed
	}
	// Release the encoder even if the Doer never drained the body.
	defer body.Close()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		c.logger.Warn("exception when trying to report stats", "error", err)
		return OutcomeFailed
	}
	// Unknown length: the body is sent with chunked transfer encoding.
	request.ContentLength = -1
	request.Header.Set("Content-Type", ContentType)
	request.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("exception when trying to report stats",
			"error", err,
			"records", body.Records(),
		)
		return OutcomeFailed
	}
	defer response.Body.Close()

	responseBody := netutil.ErrorBody(response.Body)
	if response.StatusCode != http.StatusNoContent {
		c.logger.Warn("failed to report stats",
			"status_code", response.StatusCode,
			"status_message", statusMessage(response),
			"body", responseBody,
		)
		return OutcomeRejected
	}

	c.logger.Debug("reported stats",
		"records", body.Records(),
		"url", c.uploadURL,
	)
	return OutcomeDelivered
}

// statusMessage returns the reason phrase of the response, e.g. "Bad
// Gateway" for "502 Bad Gateway".
func statusMessage(response *http.Response) string {
	if message, ok := strings.CutPrefix(response.Status, strconv.Itoa(response.StatusCode)+" "); ok && message != "" {
		return message
	}
	return http.StatusText(response.StatusCode)
}
