package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultEndpoint    = "https://api.openweathermap.org/data/2.5/weather"
	DefaultCity        = "seoul"
	DefaultTimeout     = 5 * time.Second
	DefaultMaxAttempts = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	UserAgent          = "weatherdiary"

	maxBodyBytes = 1 << 20
)

// Observation is the current weather reported by the provider.
type Observation struct {
	Condition   string
	Icon        string
	Temperature float64
}

type Config struct {
	APIKey   string
	Endpoint string
	City     string
	// Units is passed through to the provider; empty means Kelvin.
	Units   string
	Timeout time.Duration

	// MaxAttempts bounds attempts for network failures only.
	MaxAttempts int
	RetryDelay  time.Duration
}

// Client fetches current weather for a fixed city from OpenWeatherMap.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// NewClient returns a Client. httpClient may be nil, in which case one with
// cfg.Timeout is created.
func NewClient(cfg Config, httpClient *http.Client, log *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.City == "" {
		cfg.City = DefaultCity
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, log: log.With("component", "weather")}
}

// response mirrors the fields we read from the provider payload. Pointers
// distinguish absent fields from zero values.
type response struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main *string `json:"main"`
		Icon *string `json:"icon"`
	} `json:"weather"`
}

// FetchCurrent returns the current observation. Failures are always *Error.
func (c *Client) FetchCurrent(ctx context.Context) (Observation, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Observation{}, networkError(err)
		}
		body, err := c.get(ctx)
		if err == nil {
			return parse(body)
		}
		lastErr = err
		if !isKind(err, KindNetwork) || ctx.Err() != nil || attempt == c.cfg.MaxAttempts {
			break
		}

		c.log.Warn("weather fetch failed, retrying",
			"attempt", attempt, "max_attempts", c.cfg.MaxAttempts, "error", err)

		t := time.NewTimer(c.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Observation{}, networkError(ctx.Err())
		case <-t.C:
		}
	}
	return Observation{}, lastErr
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, networkError(fmt.Errorf("invalid endpoint: %w", err))
	}
	q := u.Query()
	q.Set("q", c.cfg.City)
	q.Set("appid", c.cfg.APIKey)
	if c.cfg.Units != "" {
		q.Set("units", c.cfg.Units)
	}
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, networkError(fmt.Errorf("error creating request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("fetching current weather", "url", maskAPIKey(u))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(fmt.Errorf("error fetching weather data: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, networkError(fmt.Errorf("error reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode}
	}
	return body, nil
}

func parse(body []byte) (Observation, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return Observation{}, parseError("error unmarshaling weather data: %w", err)
	}
	if r.Main == nil || r.Main.Temp == nil {
		return Observation{}, parseError("missing main.temp")
	}
	if len(r.Weather) == 0 {
		return Observation{}, parseError("no weather conditions returned")
	}
	w := r.Weather[0]
	if w.Main == nil {
		return Observation{}, parseError("missing weather[0].main")
	}
	if w.Icon == nil {
		return Observation{}, parseError("missing weather[0].icon")
	}
	return Observation{
		Condition:   *w.Main,
		Icon:        *w.Icon,
		Temperature: *r.Main.Temp,
	}, nil
}

func isKind(err error, k Kind) bool {
	we, ok := err.(*Error)
	return ok && we.Kind == k
}

func maskAPIKey(u *url.URL) string {
	m := *u
	q := m.Query()
	if q.Has("appid") {
		q.Set("appid", "***")
	}
	m.RawQuery = q.Encode()
	return m.String()
}
