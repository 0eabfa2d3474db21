// Package congress is a client for the Congress.gov v3 member API.
package congress

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/paper-trail/papertrail/internal/config"
	"github.com/paper-trail/papertrail/internal/fetcher"
)

// Term is one chamber term served by a member.
type Term struct {
	Chamber string `json:"chamber"`
}

// Member is one record from the member listing.
type Member struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	PartyName string `json:"partyName"`
	District  *int   `json:"district"`
	Terms     struct {
		Item []Term `json:"item"`
	} `json:"terms"`
}

// Chamber returns the chamber of the member's most recent term.
func (m Member) Chamber() string {
	if n := len(m.Terms.Item); n > 0 {
		return m.Terms.Item[n-1].Chamber
	}
	return ""
}

// memberPage is one page of the paginated listing.
type memberPage struct {
	Members    []Member `json:"members"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

// Client pages through member listings with the API's next-link cursor,
// pacing requests with a fixed inter-page delay.
type Client struct {
	cfg     config.CongressConfig
	httpc   *http.Client
	limiter *rate.Limiter
}

// New creates a Client from configuration.
func New(cfg config.CongressConfig) *Client {
	delay := cfg.PageDelay()
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Client{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// MembersByCongress lists every member of the given congress.
func (c *Client) MembersByCongress(ctx context.Context, congress int) ([]Member, error) {
	url := fmt.Sprintf("%s/member/congress/%d?limit=%d", c.cfg.BaseURL, congress, c.cfg.PageSize)
	return c.paginate(ctx, url)
}

// CurrentMembers lists members currently serving.
func (c *Client) CurrentMembers(ctx context.Context) ([]Member, error) {
	url := fmt.Sprintf("%s/member?currentMember=true&limit=%d", c.cfg.BaseURL, c.cfg.PageSize)
	return c.paginate(ctx, url)
}

// paginate follows next links until exhausted. A page that fails is retried
// once after a fixed delay; if the retry also fails, pagination stops with
// the members collected so far, since the next cursor is unknown.
func (c *Client) paginate(ctx context.Context, startURL string) ([]Member, error) {
	var members []Member
	url := startURL
	for url != "" {
		if err := c.limiter.Wait(ctx); err != nil {
			return members, eris.Wrap(err, "congress: page delay wait")
		}

		page, err := c.fetchPage(ctx, url)
		if err != nil {
			zap.L().Warn("congress: page fetch failed, retrying once",
				zap.String("url", url),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return members, eris.Wrap(ctx.Err(), "congress: retry wait")
			case <-time.After(c.cfg.RetryDelay()):
			}
			page, err = c.fetchPage(ctx, url)
			if err != nil {
				zap.L().Warn("congress: page fetch failed after retry, skipping remainder",
					zap.String("url", url),
					zap.Error(err),
				)
				return members, nil
			}
		}

		members = append(members, page.Members...)
		url = page.Pagination.Next
	}
	return members, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*memberPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "congress: create request")
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "congress: do request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("congress: unexpected status %d from %s", resp.StatusCode, url)
	}

	page, err := fetcher.DecodeJSONObject[memberPage](resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "congress: decode page")
	}
	return page, nil
}
