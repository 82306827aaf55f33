// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package collect

import (
	"bytes"
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/voicebankai/config"
	"github.com/voicebankai/pkg/commons"
)

// ForwardResult is the raw reply from the remote collection service.
type ForwardResult struct {
	Status int
	Body   []byte
}

// Forwarder posts a recording to the remote collection service. The
// timeout on this hop is independent of (and shorter than) the client's
// own upload timeout, to fit platform execution limits.
type Forwarder interface {
	Forward(ctx context.Context, data []byte, filename, contentType, label string) (*ForwardResult, error)
}

type restyForwarder struct {
	cfg    *config.AppConfig
	logger commons.Logger
	client *resty.Client
}

func NewForwarder(cfg *config.AppConfig, logger commons.Logger) Forwarder {
	return &restyForwarder{
		cfg:    cfg,
		logger: logger,
		client: resty.New(),
	}
}

func (f *restyForwarder) Forward(ctx context.Context, data []byte, filename, contentType, label string) (*ForwardResult, error) {
	forwardCtx, cancel := context.WithTimeout(ctx, f.cfg.Collect.ForwardTimeout())
	defer cancel()

	req := f.client.R().
		SetContext(forwardCtx).
		SetMultipartField("file", filename, contentType, bytes.NewReader(data)).
		SetFormData(map[string]string{"label": label})

	if f.cfg.Collect.AuthToken != "" {
		req.SetHeader("Authorization", "Bearer "+f.cfg.Collect.AuthToken)
	}

	resp, err := req.Post(f.cfg.Collect.TargetAPI)
	if err != nil {
		return nil, err
	}
	return &ForwardResult{Status: resp.StatusCode(), Body: resp.Body()}, nil
}
