package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reddynasty/booking-widget/pkg/logging"
)

// Upstream forwards passthrough traffic to a real Checkfront account,
// keeping the API token server-side.
type Upstream struct {
	host        string
	tokenID     string
	tokenSecret string
	httpClient  *http.Client
	logger      *logging.Logger
}

func NewUpstream(host, tokenID, tokenSecret string, logger *logging.Logger) *Upstream {
	if logger == nil {
		logger = logging.Default()
	}
	return &Upstream{
		host:        strings.TrimSuffix(host, "/"),
		tokenID:     tokenID,
		tokenSecret: tokenSecret,
		httpClient:  &http.Client{Timeout: 20 * time.Second},
		logger:      logger,
	}
}

// Get forwards a GET passthrough request and returns the upstream status
// and body verbatim.
func (u *Upstream) Get(ctx context.Context, cfPath string, params url.Values) (int, []byte, error) {
	target := u.baseURL() + cfPath
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("proxy: build upstream request: %w", err)
	}
	return u.send(req, cfPath)
}

// Post forwards a POST passthrough request. Checkfront's 3.0 API accepts
// form-encoded parameters.
func (u *Upstream) Post(ctx context.Context, cfPath string, fields map[string]string) (int, []byte, error) {
	form := url.Values{}
	for key, value := range fields {
		form.Set(key, value)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL()+cfPath, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("proxy: build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return u.send(req, cfPath)
}

// baseURL defaults to https unless the host carries an explicit scheme.
func (u *Upstream) baseURL() string {
	if strings.Contains(u.host, "://") {
		return u.host
	}
	return "https://" + u.host
}

func (u *Upstream) send(req *http.Request, cfPath string) (int, []byte, error) {
	req.SetBasicAuth(u.tokenID, u.tokenSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("proxy: upstream request to %s failed: %w", cfPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("proxy: read upstream response: %w", err)
	}
	if resp.StatusCode >= 400 {
		u.logger.Warn("upstream error", "path", cfPath, "status", resp.StatusCode)
	}
	return resp.StatusCode, body, nil
}
