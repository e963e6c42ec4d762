package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SpamCheck carries what spam filters get to look at.
type SpamCheck struct {
	IP          string
	UserAgent   string
	Referrer    string
	Permalink   string
	AuthorName  string
	AuthorEmail string
	AuthorURL   string
	Content     string
}

// SpamFilter reports whether a submission is spam.
type SpamFilter interface {
	IsSpam(ctx context.Context, check SpamCheck) (bool, error)
}

// SpamFilters runs filters in order; the first positive verdict wins.
// A failing filter counts as "not spam".
type SpamFilters struct {
	filters []SpamFilter
	log     zerolog.Logger
}

func NewSpamFilters(log zerolog.Logger, filters ...SpamFilter) *SpamFilters {
	return &SpamFilters{filters: filters, log: log.With().Str("component", "spam").Logger()}
}

func (s *SpamFilters) IsSpam(ctx context.Context, check SpamCheck) bool {
	for _, f := range s.filters {
		spam, err := f.IsSpam(ctx, check)
		if err != nil {
			s.log.Warn().Err(err).Msg("Spam filter failed, treating submission as ham")
			continue
		}
		if spam {
			s.log.Info().Str("ip", check.IP).Msg("Submission flagged as spam")
			return true
		}
	}
	return false
}

// AkismetFilter calls the Akismet comment-check API.
type AkismetFilter struct {
	apiKey   string
	blog     string
	endpoint string
	client   *http.Client
}

func NewAkismetFilter(apiKey, blogURL string) *AkismetFilter {
	return &AkismetFilter{
		apiKey:   apiKey,
		blog:     blogURL,
		endpoint: "https://rest.akismet.com/1.1/comment-check",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *AkismetFilter) IsSpam(ctx context.Context, check SpamCheck) (bool, error) {
	form := url.Values{
		"api_key":              {a.apiKey},
		"blog":                 {a.blog},
		"user_ip":              {check.IP},
		"user_agent":           {check.UserAgent},
		"referrer":             {check.Referrer},
		"permalink":            {check.Permalink},
		"comment_type":         {"comment"},
		"comment_author":       {check.AuthorName},
		"comment_author_email": {check.AuthorEmail},
		"comment_author_url":   {check.AuthorURL},
		"comment_content":      {check.Content},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build akismet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "myblog/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("akismet request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false, fmt.Errorf("failed to read akismet response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("akismet returned status %d", resp.StatusCode)
	}

	switch strings.TrimSpace(string(body)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("unexpected akismet response %q", body)
}
