package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/marcosevegrand/footwear-promo/internal/config"
)

const robotsAgentToken = "footscan"

// Requester handles HTTP requests with rate limiting and politeness
type Requester struct {
	client      *http.Client
	config      config.PoliteConfig
	userAgent   string
	limiter     *rate.Limiter
	logger      logrus.FieldLogger
	robotsCache map[string]*RobotsRules
	robotsMutex sync.RWMutex
}

// RobotsRules represents parsed robots.txt rules
type RobotsRules struct {
	Disallowed []string
	CrawlDelay time.Duration
	Fetched    time.Time
}

// NewRequester creates a new HTTP requester with rate limiting
func NewRequester(politeConfig config.PoliteConfig, userAgent string, timeout int, logger logrus.FieldLogger) *Requester {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; FootScan/1.0)"
	}
	if timeout <= 0 {
		timeout = 30
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Requester{
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		config:      politeConfig,
		userAgent:   userAgent,
		limiter:     newLimiter(politeConfig.DelayMS),
		logger:      logger,
		robotsCache: make(map[string]*RobotsRules),
	}
}

func newLimiter(delayMS int) *rate.Limiter {
	if delayMS <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(delayMS)*time.Millisecond), 1)
}

// Fetch fetches a URL with rate limiting and politeness
func (r *Requester) Fetch(ctx context.Context, targetURL string) ([]byte, error) {
	if r.config.RespectRobotsTxt {
		allowed, err := r.isAllowedByRobots(ctx, targetURL)
		if err != nil {
			r.logger.WithError(err).WithField("url", targetURL).Warn("Failed to check robots.txt")
		} else if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, targetURL)
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func (r *Requester) isAllowedByRobots(ctx context.Context, targetURL string) (bool, error) {
	parsedURL, err := url.Parse(targetURL)
	if err != nil {
		return true, err
	}

	domain := parsedURL.Scheme + "://" + parsedURL.Host
	rules, err := r.getRobotsRules(ctx, domain)
	if err != nil {
		return true, err
	}

	// A crawl delay slower than the configured pace wins.
	if rules.CrawlDelay > 0 && rate.Every(rules.CrawlDelay) < r.limiter.Limit() {
		r.limiter.SetLimit(rate.Every(rules.CrawlDelay))
	}

	path := parsedURL.Path
	if path == "" {
		path = "/"
	}

	for _, disallowed := range rules.Disallowed {
		if strings.HasPrefix(path, disallowed) {
			return false, nil
		}
	}

	return true, nil
}

func (r *Requester) getRobotsRules(ctx context.Context, domain string) (*RobotsRules, error) {
	r.robotsMutex.RLock()
	rules, exists := r.robotsCache[domain]
	r.robotsMutex.RUnlock()

	if exists && time.Since(rules.Fetched) < time.Hour {
		return rules, nil
	}

	robotsURL := domain + "/robots.txt"
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &RobotsRules{}, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	rules = &RobotsRules{}
	resp, err := r.client.Do(req)
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			if body, err := io.ReadAll(resp.Body); err == nil {
				rules = parseRobotsTxt(string(body))
			}
		}
	}
	rules.Fetched = time.Now()

	r.robotsMutex.Lock()
	r.robotsCache[domain] = rules
	r.robotsMutex.Unlock()

	return rules, nil
}

func parseRobotsTxt(content string) *RobotsRules {
	rules := &RobotsRules{
		Disallowed: make([]string, 0),
	}

	lines := strings.Split(content, "\n")
	inUserAgentBlock := false
	isRelevantAgent := false

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		directive := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch directive {
		case "user-agent":
			inUserAgentBlock = true
			isRelevantAgent = value == "*" || strings.Contains(strings.ToLower(value), robotsAgentToken)
		case "disallow":
			if inUserAgentBlock && isRelevantAgent && value != "" {
				rules.Disallowed = append(rules.Disallowed, value)
			}
		case "crawl-delay":
			if inUserAgentBlock && isRelevantAgent {
				var delay float64
				fmt.Sscanf(value, "%f", &delay)
				rules.CrawlDelay = time.Duration(delay * float64(time.Second))
			}
		}
	}

	return rules
}

// SetTimeout sets the HTTP client timeout
func (r *Requester) SetTimeout(seconds int) {
	r.client.Timeout = time.Duration(seconds) * time.Second
}

// SetUserAgent sets the user agent string
func (r *Requester) SetUserAgent(ua string) {
	r.userAgent = ua
}
