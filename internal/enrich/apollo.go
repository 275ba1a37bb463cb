package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/retry"
)

const (
	apolloProvider = "apollo"
	apolloSource   = "apollo.io"
)

// ApolloEnricher finds decision-makers at a company through the Apollo.io
// people search API. One search costs one credit.
type ApolloEnricher struct {
	baseURL      string
	apiKey       string
	titles       []string
	verifyEmails bool
	client       *http.Client
	logger       *slog.Logger
}

// ApolloOption configures an ApolloEnricher.
type ApolloOption func(*ApolloEnricher)

// WithTargetTitles replaces the person titles searched for.
func WithTargetTitles(titles []string) ApolloOption {
	return func(a *ApolloEnricher) {
		if len(titles) > 0 {
			a.titles = titles
		}
	}
}

// WithEmailVerification checks every returned email and drops the ones
// Apollo reports as undeliverable. Each check costs an extra credit.
func WithEmailVerification(enabled bool) ApolloOption {
	return func(a *ApolloEnricher) { a.verifyEmails = enabled }
}

// NewApolloEnricher creates an enricher for the Apollo API at baseURL
// (e.g. https://api.apollo.io/v1).
func NewApolloEnricher(baseURL, apiKey string, client *http.Client, logger *slog.Logger, opts ...ApolloOption) *ApolloEnricher {
	a := &ApolloEnricher{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		titles:  defaultTargetTitles,
		client:  client,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultTargetTitles = []string{
	"CEO", "Chief Executive Officer", "Geschäftsführer",
	"CRO", "Chief Revenue Officer",
	"COO", "Chief Operating Officer",
	"VP Sales", "Vice President Sales",
	"Head of Sales", "Leiter Vertrieb",
	"Sales Director", "Vertriebsleiter",
	"Head of Business Development",
	"Head of HR", "Head of People",
	"CHRO", "Chief Human Resources Officer",
	"Talent Acquisition Lead",
}

type searchRequest struct {
	OrganizationDomains []string `json:"organization_domains"`
	PersonTitles        []string `json:"person_titles,omitempty"`
	Page                int      `json:"page"`
	PerPage             int      `json:"per_page"`
}

type searchResponse struct {
	People []apolloPerson `json:"people"`
}

type apolloPerson struct {
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Email        string        `json:"email"`
	Title        string        `json:"title"`
	LinkedInURL  string        `json:"linkedin_url"`
	PhoneNumbers []apolloPhone `json:"phone_numbers"`
}

type apolloPhone struct {
	Type            string `json:"type"`
	Number          string `json:"number"`
	SanitizedNumber string `json:"sanitized_number"`
}

func (p apolloPhone) value() string {
	if p.SanitizedNumber != "" {
		return p.SanitizedNumber
	}
	return p.Number
}

// Enrich searches for up to maxContacts decision-makers at domain. Only
// people with an email address are returned.
func (a *ApolloEnricher) Enrich(ctx context.Context, domain string, maxContacts int) ([]model.Contact, error) {
	payload := searchRequest{
		OrganizationDomains: []string{domain},
		PersonTitles:        a.titles,
		Page:                1,
		PerPage:             maxContacts,
	}

	var resp searchResponse
	header, err := a.post(ctx, "/mixed_people/search", payload, &resp)
	if err != nil {
		return nil, fmt.Errorf("apollo search for %s: %w", domain, err)
	}

	contacts := make([]model.Contact, 0, len(resp.People))
	for _, p := range resp.People {
		c := toContact(p)
		if c.Email == "" {
			continue
		}
		if a.verifyEmails && !a.VerifyEmail(ctx, c.Email) {
			a.logger.Info("dropping undeliverable email", "domain", domain, "contact", c.FullName())
			c.Email = ""
		}
		contacts = append(contacts, c)
	}

	attrs := []any{"domain", domain, "contacts", len(contacts)}
	if remaining := header.Get("x-credits-remaining"); remaining != "" {
		attrs = append(attrs, "credits_remaining", remaining)
	}
	a.logger.Info("apollo search complete", attrs...)

	return contacts, nil
}

func toContact(p apolloPerson) model.Contact {
	return model.Contact{
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		Email:       strings.TrimSpace(p.Email),
		Phone:       pickPhone(p.PhoneNumbers),
		Title:       p.Title,
		Seniority:   model.ClassifySeniority(p.Title),
		LinkedInURL: p.LinkedInURL,
		Source:      apolloSource,
	}
}

// pickPhone prefers the first mobile or work number, else the first number.
func pickPhone(numbers []apolloPhone) string {
	for _, n := range numbers {
		if n.Type == "mobile" || n.Type == "work" {
			if v := n.value(); v != "" {
				return v
			}
		}
	}
	if len(numbers) > 0 {
		return numbers[0].value()
	}
	return ""
}

type verificationResponse struct {
	Status string `json:"status"`
}

// VerifyEmail reports whether Apollo considers email deliverable ("valid"
// or "accept_all"). A failed check counts as deliverable.
func (a *ApolloEnricher) VerifyEmail(ctx context.Context, email string) bool {
	var resp verificationResponse
	if _, err := a.post(ctx, "/email_verifications", map[string]string{"email": email}, &resp); err != nil {
		a.logger.Warn("email verification failed", "error", err)
		return true
	}
	return resp.Status == "valid" || resp.Status == "accept_all"
}

// Credits is the account's credit state as reported by Apollo response headers.
type Credits struct {
	Remaining string
	Limit     string
	Reset     string
}

// Credits issues a minimal search and reads the credit headers from the
// response. Apollo has no dedicated credits endpoint.
func (a *ApolloEnricher) Credits(ctx context.Context) (Credits, error) {
	payload := searchRequest{OrganizationDomains: []string{"example.com"}, Page: 1, PerPage: 1}

	var resp searchResponse
	header, err := a.post(ctx, "/mixed_people/search", payload, &resp)
	if err != nil {
		return Credits{}, fmt.Errorf("apollo credits: %w", err)
	}
	return Credits{
		Remaining: header.Get("x-credits-remaining"),
		Limit:     header.Get("x-credits-limit"),
		Reset:     header.Get("x-credits-reset"),
	}, nil
}

// post sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses become *model.HTTPError.
func (a *ApolloEnricher) post(ctx context.Context, path string, body, out any) (http.Header, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Api-Key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, &model.HTTPError{
			Provider:   apolloProvider,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        errors.New(truncate(string(respBytes), 200)),
		}
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return resp.Header, retry.Permanent(fmt.Errorf("parse response: %w", err))
	}
	return resp.Header, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
