// Package gmail provides the Gmail mail source. Messages matching the
// configured query are fetched in raw RFC 822 form and handed to the eml
// normaliser like any other container.
package gmail

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/labonzique/comcast-asrs-handler/internal/connectors/google"
	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.MailSource = (*Connector)(nil)

const userID = "me"

// Connector lists and downloads Gmail messages.
type Connector struct {
	name    string
	service *gmail.Service
	cfg     *Config
	limiter *google.RateLimiter
}

// New creates a connector over an existing Gmail service.
func New(name string, service *gmail.Service, cfg *Config) *Connector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Connector{
		name:    name,
		service: service,
		cfg:     cfg,
		limiter: google.NewRateLimiter(google.GmailRateLimit),
	}
}

// NewFromSettings builds the OAuth2 token source and Gmail service from
// stored credentials.
func NewFromSettings(ctx context.Context, name string, s domain.GmailSettings, opts ...option.ClientOption) (*Connector, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("gmail: %w", domain.ErrNotConfigured)
	}
	ts := google.NewTokenSource(ctx, google.Credentials{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RefreshToken: s.RefreshToken,
	})
	svc, err := google.NewGmailService(ctx, ts, opts...)
	if err != nil {
		return nil, err
	}
	return New(name, svc, ConfigFromSettings(s)), nil
}

// Name identifies the source.
func (c *Connector) Name() string {
	return c.name
}

// Validate checks the credentials by reading the mailbox profile.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	profile, err := c.service.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail profile: %w", google.WrapError(err))
	}
	logger.Debug("Gmail mailbox %s: %d messages", profile.EmailAddress, profile.MessagesTotal)
	return nil
}

// Fetch pages through messages.list and downloads each match. A failed
// download is reported and skipped; a failed listing ends the fetch.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(docs)

		send := func(err error) bool {
			select {
			case errs <- err:
				return true
			case <-ctx.Done():
				return false
			}
		}

		pageToken := ""
		for {
			page, err := c.listPage(ctx, pageToken)
			if err != nil {
				send(fmt.Errorf("gmail list: %w", err))
				return
			}

			for _, ref := range page.Messages {
				doc, err := c.getMessage(ctx, ref.Id)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					failure := domain.DocumentFailure{
						Document: "gmail://messages/" + ref.Id,
						Stage:    domain.StageFetch,
						Err:      err,
					}
					if !send(failure) {
						return
					}
					continue
				}
				select {
				case docs <- *doc:
				case <-ctx.Done():
					return
				}
			}

			if page.NextPageToken == "" {
				return
			}
			pageToken = page.NextPageToken
		}
	}()

	return docs, errs
}

// Close is a no-op; the service holds no connections of its own.
func (c *Connector) Close() error {
	return nil
}

func (c *Connector) listPage(ctx context.Context, pageToken string) (*gmail.ListMessagesResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := c.service.Users.Messages.List(userID).
		Q(c.cfg.Query).
		MaxResults(c.cfg.MaxResults).
		IncludeSpamTrash(c.cfg.IncludeSpamTrash).
		Context(ctx)
	if len(c.cfg.LabelIDs) > 0 {
		call = call.LabelIds(c.cfg.LabelIDs...)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, c.mapError(err)
	}
	return resp, nil
}

func (c *Connector) getMessage(ctx context.Context, id string) (*domain.RawDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg, err := c.service.Users.Messages.Get(userID, id).Format("raw").Context(ctx).Do()
	if err != nil {
		return nil, c.mapError(err)
	}
	return MessageToRawDocument(msg, c.name)
}

// mapError backs the limiter off after a 429 before translating the error.
func (c *Connector) mapError(err error) error {
	if google.StatusCode(err) == http.StatusTooManyRequests {
		c.limiter.Backoff(0)
	}
	return google.WrapError(err)
}
