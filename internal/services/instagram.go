package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/nkoz18/photography-blog-sub000/internal/cache"
	"github.com/nkoz18/photography-blog-sub000/internal/config"
	"github.com/nkoz18/photography-blog-sub000/internal/logger"
)

const instagramBaseURL = "https://www.instagram.com"

// mobileUserAgent yields the stable mobile markup Instagram serves to
// phone browsers, which is what the marker phrases are matched against.
const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Mobile/15E148 Safari/604.1"

// maxProfileBodySize caps how much of the profile page is read
const maxProfileBodySize = 1 << 20

// Marker phrases on the mobile profile page
const (
	markerNotAvailable = "page isn't available"
	markerPrivate      = "account is private"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9._]{1,30}$`)

// errRateLimited marks a 429 from Instagram; it is surfaced as Unknown
// and recorded under a separate short-TTL key.
var errRateLimited = errors.New("instagram rate limited")

// Existence is the tri-state result of a handle probe. Unknown means
// inconclusive; callers must treat it as "permit the user to proceed",
// never as a confirmed NotFound.
type Existence int

const (
	ExistenceUnknown Existence = iota
	ExistencePublic
	ExistenceNotFound
)

func (e Existence) String() string {
	switch e {
	case ExistencePublic:
		return "public"
	case ExistenceNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Instagram probes public profile pages for handle existence.
type Instagram struct {
	cfg        *config.Config
	cache      *cache.Store
	httpClient *http.Client
	baseURL    string
}

func NewInstagram(cfg *config.Config, store *cache.Store) *Instagram {
	return &Instagram{
		cfg:   cfg,
		cache: store,
		httpClient: &http.Client{
			Timeout: cfg.InstagramTimeout,
		},
		baseURL: instagramBaseURL,
	}
}

// Exists checks whether handle resolves to a public Instagram profile.
// Malformed handles return Unknown without touching the cache. Confirmed
// answers are cached for the long TTL; a 429 upstream parks the handle
// under a short-TTL marker instead, leaving the long slot empty so a
// later probe can still resolve a real answer. Timeouts and network
// errors resolve to Unknown and are never cached.
func (s *Instagram) Exists(ctx context.Context, handle string) (Existence, error) {
	if !handlePattern.MatchString(handle) {
		return ExistenceUnknown, nil
	}

	if _, parked := s.cache.Get("ig:rl:" + handle); parked {
		return ExistenceUnknown, nil
	}

	v, err := s.cache.GetOrCompute(ctx, "ig:"+handle, s.cfg.InstagramCacheTTL, func(ctx context.Context) (interface{}, error) {
		return s.probe(ctx, handle)
	})
	if err != nil {
		log := logger.GetLogger("service.instagram")
		if errors.Is(err, errRateLimited) {
			s.cache.Set("ig:rl:"+handle, true, s.cfg.InstagramRateLimitTTL)
			log.Warnf("Instagram rate limited for handle %s, parking for %s", handle, s.cfg.InstagramRateLimitTTL)
		} else {
			log.Warnf("Instagram probe failed for handle %s: %v", handle, err)
		}
		return ExistenceUnknown, nil
	}

	return v.(Existence), nil
}

func (s *Instagram) probe(ctx context.Context, handle string) (Existence, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/%s/", s.baseURL, handle), nil)
	if err != nil {
		return ExistenceUnknown, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", mobileUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Timeout or network failure: transient, must not be cached.
		return ExistenceUnknown, fmt.Errorf("profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ExistenceUnknown, errRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ExistenceUnknown, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBodySize))
	if err != nil {
		return ExistenceUnknown, fmt.Errorf("profile read failed: %w", err)
	}

	page := strings.ToLower(string(body))
	if strings.Contains(page, markerNotAvailable) || strings.Contains(page, markerPrivate) {
		return ExistenceNotFound, nil
	}
	return ExistencePublic, nil
}
