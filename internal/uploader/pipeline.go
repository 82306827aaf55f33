// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/session"
	"github.com/voicebankai/pkg/commons"
)

// Pipeline delivers a captured artifact and its metadata to the collect
// endpoint. Submit has no side effects beyond the network call: the same
// artifact and metadata always produce the same request.
type Pipeline interface {
	Submit(ctx context.Context, artifact session.Artifact, meta Metadata) Outcome
}

type restyPipeline struct {
	cfg    *config.AppConfig
	logger commons.Logger
	client *resty.Client
}

// NewPipeline builds the resty-backed upload pipeline. Per-attempt timeout
// and the bounded retry loop are handled here rather than through resty's
// own retry hooks so the attempt counter stays explicit and observable.
func NewPipeline(cfg *config.AppConfig, logger commons.Logger) Pipeline {
	return &restyPipeline{
		cfg:    cfg,
		logger: logger,
		client: resty.New(),
	}
}

// acceptedLocallyBody is the subset of the proxy response the pipeline
// inspects to distinguish a true remote delivery from local acceptance.
type acceptedLocallyBody struct {
	AcceptedLocally bool   `json:"acceptedLocally"`
	Message         string `json:"message"`
}

func (p *restyPipeline) Submit(ctx context.Context, artifact session.Artifact, meta Metadata) Outcome {
	label, err := meta.Label()
	if err != nil {
		return Failed(fmt.Errorf("unable to encode metadata label: %w", err), 0, 0)
	}
	filename := meta.Filename()

	var lastErr error
	lastStatus := 0
	for attempt := 1; attempt <= p.cfg.Collect.RetryAttempts; attempt++ {
		resp, err := p.post(ctx, artifact, filename, label)
		switch {
		case err != nil:
			// Transport failure or timeout. The per-attempt context has
			// already aborted the in-flight request; retries get a fresh one.
			lastErr = err
			lastStatus = 0
			p.logger.Warnf("upload attempt %d/%d failed: %v", attempt, p.cfg.Collect.RetryAttempts, err)

		case resp.StatusCode() >= 200 && resp.StatusCode() < 300:
			var body acceptedLocallyBody
			if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil && body.AcceptedLocally {
				p.logger.Infof("upload accepted locally on attempt %d: %s", attempt, body.Message)
				return AcceptedLocally(body.Message, resp.StatusCode(), resp.Body(), attempt)
			}
			p.logger.Debugf("upload delivered on attempt %d (status %d)", attempt, resp.StatusCode())
			return Delivered(resp.StatusCode(), resp.Body(), attempt)

		case resp.StatusCode() >= 400 && resp.StatusCode() < 500:
			// The request reached the endpoint and was rejected as a caller
			// error. Retrying the identical payload cannot help.
			err := fmt.Errorf("collect endpoint rejected upload: status %d: %s", resp.StatusCode(), resp.String())
			p.logger.Errorf("upload attempt %d rejected, not retrying: %v", attempt, err)
			return Failed(err, resp.StatusCode(), attempt)

		default:
			lastErr = fmt.Errorf("collect endpoint unavailable: status %d", resp.StatusCode())
			lastStatus = resp.StatusCode()
			p.logger.Warnf("upload attempt %d/%d got status %d", attempt, p.cfg.Collect.RetryAttempts, resp.StatusCode())
		}

		if attempt < p.cfg.Collect.RetryAttempts {
			if err := sleepCtx(ctx, p.cfg.Collect.RetryDelay()); err != nil {
				return Failed(fmt.Errorf("upload canceled while waiting to retry: %w", err), lastStatus, attempt)
			}
		}
	}

	return Failed(lastErr, lastStatus, p.cfg.Collect.RetryAttempts)
}

func (p *restyPipeline) post(ctx context.Context, artifact session.Artifact, filename, label string) (*resty.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.Collect.Timeout())
	defer cancel()

	req := p.client.R().
		SetContext(attemptCtx).
		SetFileReader("file", filename, bytes.NewReader(artifact.Bytes)).
		SetFormData(map[string]string{"label": label})

	if p.cfg.Collect.AuthToken != "" {
		req.SetHeader("Authorization", "Bearer "+p.cfg.Collect.AuthToken)
	}

	return req.Post(p.cfg.Collect.Endpoint)
}

// sleepCtx waits for the fixed retry delay unless the caller context is
// canceled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StatusText is a small convenience for log lines around outcomes.
func StatusText(status int) string {
	if status == 0 {
		return "no-response"
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}
