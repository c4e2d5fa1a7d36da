// Package github retrieves CSSE daily reports from the CSSEGISandData/COVID-19
// repository through the GitHub REST API.
package github

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	gh "github.com/google/go-github/v74/github"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/covid-choropleth/internal/adapter/csse"
	"github.com/couchcryptid/covid-choropleth/internal/domain"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com/"

	repoOwner  = "CSSEGISandData"
	repoName   = "COVID-19"
	dataDir    = "csse_covid_19_data"
	reportsDir = "csse_covid_19_daily_reports"

	// RefLatest selects the newest daily report.
	RefLatest = "latest"
)

// Report is one daily report file in the repository.
type Report struct {
	Name string
	Date time.Time
	SHA  string
}

// Client lists and downloads daily reports.
//
// The report directory is listed through the git trees API: the contents API
// stops at 1,000 entries and the directory holds more.
type Client struct {
	api     *gh.Client
	logger  *slog.Logger
	listing listingCache
}

// NewClient creates a GitHub client. The token is optional and only raises
// the API rate limit.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, eris.Wrapf(err, "github base URL %q", baseURL)
	}

	client := gh.NewClient(&http.Client{Timeout: timeout})
	if token != "" {
		client = client.WithAuthToken(token)
	}
	client.BaseURL = u
	client.UserAgent = "covid-choropleth"

	return &Client{api: client, logger: logger}, nil
}

// ListReports returns all dated CSV reports, oldest first. The listing is
// fetched once per Client.
func (c *Client) ListReports(ctx context.Context) ([]Report, error) {
	return c.listing.get(ctx, c.fetchListing)
}

func (c *Client) fetchListing(ctx context.Context) ([]Report, error) {
	sha, err := c.reportsTreeSHA(ctx)
	if err != nil {
		return nil, err
	}

	tree, _, err := c.api.Git.GetTree(ctx, repoOwner, repoName, sha, false)
	if err != nil {
		return nil, eris.Wrap(err, "list daily reports")
	}
	if tree.GetTruncated() {
		c.logger.Warn("daily report listing truncated", "entries", len(tree.Entries))
	}

	reports := make([]Report, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		name := e.GetPath()
		if e.GetType() != "blob" || !strings.HasSuffix(name, ".csv") {
			continue
		}
		date, ok := csse.SnapshotDate(name)
		if !ok {
			continue
		}
		reports = append(reports, Report{Name: name, Date: date, SHA: e.GetSHA()})
	}
	slices.SortFunc(reports, func(a, b Report) int { return a.Date.Compare(b.Date) })
	return reports, nil
}

// reportsTreeSHA looks up the daily reports directory in its parent, which
// is small enough for the contents API.
func (c *Client) reportsTreeSHA(ctx context.Context) (string, error) {
	_, entries, _, err := c.api.Repositories.GetContents(ctx, repoOwner, repoName, dataDir, nil)
	if err != nil {
		return "", eris.Wrap(err, "list data directory")
	}
	for _, e := range entries {
		if e.GetType() == "dir" && e.GetName() == reportsDir {
			return e.GetSHA(), nil
		}
	}
	return "", eris.Errorf("%s/%s not found", dataDir, reportsDir)
}

// Find resolves ref ("latest" or an MM-DD-YYYY date) to a report.
func (c *Client) Find(ctx context.Context, ref string) (Report, error) {
	reports, err := c.ListReports(ctx)
	if err != nil {
		return Report{}, err
	}
	if len(reports) == 0 {
		return Report{}, eris.New("no daily reports found")
	}

	if ref == RefLatest {
		latest := reports[len(reports)-1]
		c.logger.Info("resolved latest daily report", "name", latest.Name, "sha", latest.SHA)
		return latest, nil
	}

	want, err := time.Parse(csse.DateLayout, ref)
	if err != nil {
		return Report{}, eris.Wrapf(err, "invalid report ref %q (want %q or MM-DD-YYYY)", ref, RefLatest)
	}
	for _, r := range reports {
		if r.Date.Equal(want) {
			return r, nil
		}
	}
	return Report{}, eris.Errorf("no daily report for %s", ref)
}

// FetchSnapshot resolves ref, downloads the report, and parses it.
func (c *Client) FetchSnapshot(ctx context.Context, ref string) (domain.Snapshot, error) {
	report, err := c.Find(ctx, ref)
	if err != nil {
		return domain.Snapshot{}, eris.Wrapf(domain.FatalIO(err), "fetch snapshot %q", ref)
	}

	body, _, err := c.api.Git.GetBlobRaw(ctx, repoOwner, repoName, report.SHA)
	if err != nil {
		return domain.Snapshot{}, eris.Wrapf(domain.FatalIO(err), "download %s", report.Name)
	}

	rows, err := csse.ReadSnapshot(bytes.NewReader(body))
	if err != nil {
		return domain.Snapshot{}, eris.Wrapf(err, "snapshot %s", report.Name)
	}
	c.logger.Info("downloaded daily report", "name", report.Name, "rows", len(rows))
	return domain.Snapshot{Date: report.Date, Rows: rows}, nil
}
