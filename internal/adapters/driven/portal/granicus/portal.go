// Package granicus provides a Portal adapter for Granicus-hosted
// meeting archives.
//
// The archive listing is a ViewPublisher.php page whose table rows
// carry a meeting date, a title, and viewer links. Agenda pages are
// served directly; minutes links redirect through a Google Docs viewer
// that embeds the real PDF URL.
package granicus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Ensure Portal implements the interface.
var _ driven.Portal = (*Portal)(nil)

// Default configuration values.
const (
	DefaultBaseURL           = "https://ccsf.granicus.com"
	DefaultViewID            = 3
	DefaultRequestsPerSecond = 1.0
	DefaultTimeout           = 60 * time.Second
)

// meetingDate matches listing dates of the form "Mon DD, YYYY".
var meetingDate = regexp.MustCompile(`([A-Z][a-z]{2}\s+\d{1,2},\s+\d{4})`)

// Config holds configuration for the Granicus portal.
type Config struct {
	// BaseURL is the portal root (default: https://ccsf.granicus.com).
	BaseURL string

	// ViewID selects the archive view to scrape (default: 3).
	ViewID int

	// RequestsPerSecond is the courtesy throttle applied to fetches
	// (default: 1.0).
	RequestsPerSecond float64

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// Portal fetches meeting listings and documents from Granicus.
type Portal struct {
	client  *http.Client
	baseURL string
	viewID  int
	limiter *rate.Limiter
}

// NewPortal creates a new Granicus portal adapter.
func NewPortal(cfg Config) *Portal {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ViewID == 0 {
		cfg.ViewID = DefaultViewID
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Portal{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		viewID:  cfg.ViewID,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// ArchiveURL returns the listing URL being scraped.
func (p *Portal) ArchiveURL() string {
	return fmt.Sprintf("%s/ViewPublisher.php?view_id=%d", p.baseURL, p.viewID)
}

// ListMeetings scrapes the archive listing into meeting records.
// Rows without a recognisable date or without viewer links are skipped.
func (p *Portal) ListMeetings(ctx context.Context) ([]domain.Meeting, error) {
	body, _, err := p.get(ctx, p.ArchiveURL())
	if err != nil {
		return nil, fmt.Errorf("fetching archive page: %w", err)
	}

	meetings, err := parseArchive(body, p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing archive page: %w", err)
	}

	return meetings, nil
}

// FetchAgenda downloads an agenda viewer page.
func (p *Portal) FetchAgenda(ctx context.Context, pageURL string) (*domain.RawDocument, error) {
	body, resp, err := p.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching agenda: %w", err)
	}

	return &domain.RawDocument{
		SourceURL:   pageURL,
		Type:        domain.DocumentTypeAgenda,
		ClipID:      domain.ClipIDFromURL(pageURL),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

// FetchMinutes resolves a minutes viewer URL to the underlying PDF and
// downloads it. The viewer redirects either to a Google Docs embed
// carrying the real PDF URL, or straight to the document.
func (p *Portal) FetchMinutes(ctx context.Context, pageURL string) (*domain.RawDocument, error) {
	body, resp, err := p.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching minutes: %w", err)
	}

	finalURL := resp.Request.URL.String()
	contentType := resp.Header.Get("Content-Type")

	pdfURL, direct, err := resolvePDFURL(finalURL)
	if err != nil {
		return nil, err
	}

	// A Google viewer redirect means the first response was the embed
	// page, not the document; fetch the real PDF.
	if !direct {
		body, resp, err = p.get(ctx, pdfURL)
		if err != nil {
			return nil, fmt.Errorf("downloading PDF: %w", err)
		}
		contentType = resp.Header.Get("Content-Type")
	}

	if !strings.Contains(strings.ToLower(contentType), "pdf") && !bytes.HasPrefix(body, []byte("%PDF")) {
		return nil, fmt.Errorf("response from %s has content type %q: %w", pdfURL, contentType, domain.ErrNotPDF)
	}

	return &domain.RawDocument{
		SourceURL:   pageURL,
		ResolvedURL: pdfURL,
		Type:        domain.DocumentTypeMinutes,
		ClipID:      domain.ClipIDFromURL(pageURL),
		ContentType: contentType,
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

// resolvePDFURL decides where the PDF lives given the final URL after
// redirects. direct reports whether the already-fetched body is the
// document itself.
func resolvePDFURL(finalURL string) (pdfURL string, direct bool, err error) {
	if strings.Contains(finalURL, "docs.google.com/gview") {
		u, perr := url.Parse(finalURL)
		if perr != nil {
			return "", false, fmt.Errorf("resolving PDF from %s: %w", finalURL, domain.ErrNotPDF)
		}
		// The embedded URL is double-encoded in the gview link.
		embedded := u.Query().Get("url")
		if unescaped, uerr := url.QueryUnescape(embedded); uerr == nil {
			embedded = unescaped
		}
		if embedded == "" {
			return "", false, fmt.Errorf("resolving PDF from %s: %w", finalURL, domain.ErrNotPDF)
		}
		return embedded, false, nil
	}

	if strings.Contains(strings.ToLower(finalURL), ".pdf") || strings.Contains(finalURL, "DocumentViewer") {
		return finalURL, true, nil
	}

	return "", false, fmt.Errorf("could not resolve a PDF from %s: %w", finalURL, domain.ErrNotPDF)
}

// get performs a throttled GET and returns the body with the response
// metadata. Redirects are followed; resp.Request.URL carries the final
// location.
func (p *Portal) get(ctx context.Context, target string) ([]byte, *http.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("portal returned status %d for %s", resp.StatusCode, target)
	}

	return body, resp, nil
}

// parseArchive extracts meeting rows from the listing HTML. A row
// counts as a meeting when it has at least two cells, a parseable
// date, and an agenda or minutes viewer link.
func parseArchive(body []byte, baseURL string) ([]domain.Meeting, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var meetings []domain.Meeting

	for _, row := range findAll(root, "tr") {
		cells := findAll(row, "td")
		if len(cells) < 2 {
			continue
		}

		match := meetingDate.FindString(rawText(row))
		if match == "" {
			continue
		}

		title := textContent(cells[0], "")
		agendaURL, minutesURL := rowLinks(row, baseURL)
		if agendaURL == "" && minutesURL == "" {
			continue
		}

		meeting := domain.Meeting{
			Title:      title,
			AgendaURL:  agendaURL,
			MinutesURL: minutesURL,
		}

		// Dates arrive as "Mon DD, YYYY"; collapse whitespace runs
		// before parsing.
		date, perr := time.Parse("Jan 2, 2006", strings.Join(strings.Fields(match), " "))
		if perr != nil {
			meeting.ID = domain.UnknownMeetingID(len(meetings))
		} else {
			meeting.ID = domain.MeetingID(date)
			meeting.Date = date
		}

		meetings = append(meetings, meeting)
	}

	return meetings, nil
}

// rowLinks classifies the row's anchors into agenda and minutes viewer
// URLs, making relative hrefs absolute against the portal base.
func rowLinks(row *html.Node, baseURL string) (agendaURL, minutesURL string) {
	for _, link := range findAll(row, "a") {
		href := attrValue(link, "href")
		if href == "" {
			continue
		}

		if !strings.HasPrefix(href, "http") {
			href = baseURL + "/" + strings.TrimPrefix(href, "/")
		}

		switch strings.ToLower(textContent(link, "")) {
		case "agenda":
			if strings.Contains(href, "AgendaViewer") {
				agendaURL = href
			}
		case "minutes":
			if strings.Contains(href, "MinutesViewer") {
				minutesURL = href
			}
		}
	}

	return agendaURL, minutesURL
}

// findAll collects elements with the given tag name in document order.
func findAll(n *html.Node, tag string) []*html.Node {
	var nodes []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			nodes = append(nodes, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return nodes
}

// textContent collects the node's text segments, trimmed, joined with sep.
func textContent(n *html.Node, sep string) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(parts, sep)
}

// rawText concatenates the node's text segments without trimming, for
// pattern matching across the whole row.
func rawText(n *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return sb.String()
}

// attrValue returns the named attribute's value, or "".
func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
