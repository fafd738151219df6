// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-reviewer/internal/httputil"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// arxivPDFBase resolves bare arXiv identifiers. Declared as a var so tests
// can substitute an httptest server.
var arxivPDFBase = "https://arxiv.org/pdf/"

// maxDownload caps a fetched document.
const maxDownload = 100 << 20

// arxivPattern matches arXiv IDs: "2301.07041", "arXiv:2301.07041", "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// Loader fetches and extracts papers from local paths, URLs, or arXiv IDs.
type Loader struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	Logger     zerolog.Logger
}

// NewLoader builds a Loader from the download settings.
func NewLoader(cfg types.HTTPConfig, log zerolog.Logger) *Loader {
	return &Loader{
		Client:    &http.Client{Timeout: cfg.Timeout},
		UserAgent: cfg.UserAgent,
		Logger:    log,
	}
}

// Resolve turns an input into a location: an arXiv ID becomes its PDF URL,
// anything else is returned unchanged.
func Resolve(input string) string {
	input = strings.TrimSpace(input)
	if m := arxivPattern.FindStringSubmatch(input); m != nil {
		return arxivPDFBase + m[1]
	}
	return input
}

// IsURL reports whether s is an absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load reads a local file or downloads a URL, then extracts it.
func (l *Loader) Load(ctx context.Context, input string) (*types.PaperText, error) {
	loc := Resolve(input)

	var (
		data []byte
		err  error
	)
	if IsURL(loc) {
		data, err = l.Fetch(ctx, loc)
	} else {
		data, err = os.ReadFile(loc)
		if err != nil {
			err = fmt.Errorf("reading %s: %w", loc, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return Extract(data)
}

// Fetch downloads a document, retrying transient failures.
func (l *Loader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	l.Logger.Debug().Str("url", req.URL.Redacted()).Msg("downloading paper")
	resp, err := httputil.DoWithRetry(ctx, client, req, l.MaxRetries, l.Logger)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: HTTP %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	if len(data) > maxDownload {
		return nil, fmt.Errorf("downloading %s: document exceeds %d bytes", rawURL, maxDownload)
	}
	return data, nil
}
