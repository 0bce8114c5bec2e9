// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/olegiv/lingopack-go/internal/model"
)

// ProviderOpenAI is the id of the OpenAI-backed translator.
const ProviderOpenAI = "openai"

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultTemperature = 0.2

	// transientAttempts bounds in-call retries of rate-limit and server
	// errors. Batch-level retries are handled by the engine on top.
	transientAttempts = 3
	retryBaseDelay    = 500 * time.Millisecond
)

// OpenAI translates units through the OpenAI chat completions API.
// Calls are rate limited and transient failures are retried with
// exponential backoff before being reported to the engine.
type OpenAI struct {
	client  openai.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	model   string
}

// OpenAIOptions configures the OpenAI translator.
type OpenAIOptions struct {
	APIKey string
	Model  string // default model, overridable per request

	// RequestsPerSecond throttles outgoing calls. 0 disables throttling.
	RequestsPerSecond float64
}

// NewOpenAI creates the OpenAI translator.
func NewOpenAI(opts OpenAIOptions, logger *slog.Logger) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if opts.Model == "" {
		opts.Model = defaultOpenAIModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &OpenAI{
		client:  openai.NewClient(option.WithAPIKey(opts.APIKey)),
		limiter: limiter,
		logger:  logger,
		model:   opts.Model,
	}, nil
}

// ID implements Translator.
func (o *OpenAI) ID() string { return ProviderOpenAI }

// Translate implements Translator. The whole chunk goes out as one chat
// completion; units missing from the model's reply come back as unit-local
// failures so the rest of the chunk still lands.
func (o *OpenAI) Translate(ctx context.Context, req *Request) (*Result, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = o.model
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(modelID),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(req)),
			openai.UserMessage(buildUserPrompt(req)),
		},
		Temperature: openai.Float(defaultTemperature),
	}

	var content string
	backoff := retry.WithMaxRetries(transientAttempts, retry.NewExponential(retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := o.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if isTransientAPIError(err) {
				o.logger.Warn("openai transient error, backing off", "model", modelID, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return retry.RetryableError(errors.New("openai: no choices returned"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		if isFatalAPIError(err) {
			return nil, Fatal(fmt.Errorf("openai call: %w", err))
		}
		return nil, fmt.Errorf("openai call: %w", err)
	}

	return parseTranslations(content, req.Units)
}

func buildSystemPrompt(req *Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a game localization translator. Translate from %s to %s.\n",
		req.SourceLanguage, req.TargetLanguage)
	sb.WriteString("Preserve placeholders, format specifiers and markup exactly as they appear.\n")

	if len(req.Terms) > 0 {
		sb.WriteString("Use this glossary; match source terms including their variant forms:\n")
		for _, t := range req.Terms {
			writeTerm(&sb, t)
		}
	}
	if len(req.Memory) > 0 {
		sb.WriteString("Prior translations in this project, for consistency:\n")
		for _, m := range req.Memory {
			fmt.Fprintf(&sb, "- %q => %q\n", m.Source, m.Target)
		}
	}

	sb.WriteString(`Reply with a single JSON object mapping each unit "id" (as a string key) to its translated text. No other output.`)
	return sb.String()
}

func writeTerm(sb *strings.Builder, t model.GlossaryTerm) {
	if len(t.Variants) > 0 {
		fmt.Fprintf(sb, "- %q (also: %s) => %q\n", t.Source, strings.Join(t.Variants, ", "), t.Target)
		return
	}
	fmt.Fprintf(sb, "- %q => %q\n", t.Source, t.Target)
}

func buildUserPrompt(req *Request) string {
	type promptUnit struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Text string `json:"text"`
	}
	units := make([]promptUnit, len(req.Units))
	for i, u := range req.Units {
		units[i] = promptUnit{ID: strconv.FormatInt(u.ID, 10), Key: u.Key, Text: u.Text}
	}
	data, _ := json.Marshal(units)
	return string(data)
}

// parseTranslations decodes the model reply. Units the model skipped or
// returned empty become unit-local failures; an undecodable reply fails the
// whole request as transient so the engine may retry the batch.
func parseTranslations(content string, units []Unit) (*Result, error) {
	payload := extractJSONObject(content)

	var translated map[string]string
	if err := json.Unmarshal([]byte(payload), &translated); err != nil {
		return nil, fmt.Errorf("openai: decoding reply: %w", err)
	}

	res := &Result{
		Translations: make(map[int64]string, len(units)),
		Failed:       make(map[int64]string),
	}
	for _, u := range units {
		text, ok := translated[strconv.FormatInt(u.ID, 10)]
		if !ok || text == "" {
			res.Failed[u.ID] = "missing from provider reply"
			continue
		}
		res.Translations[u.ID] = text
	}
	return res, nil
}

// extractJSONObject strips markdown fences and surrounding prose some models
// wrap around JSON replies.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

func isTransientAPIError(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == http.StatusTooManyRequests || apierr.StatusCode >= 500
	}
	// Network-level failures without an API status are worth one more try.
	return true
}

func isFatalAPIError(err error) bool {
	var apierr *openai.Error
	if !errors.As(err, &apierr) {
		return false
	}
	switch apierr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
