package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultMaxBodyBytes is the largest accepted chat submission (100MB).
	DefaultMaxBodyBytes int64 = 100 << 20
	// DefaultUpstreamDeadline stays under the default platform request cap.
	DefaultUpstreamDeadline = 55 * time.Second
	// DefaultPlatformRequestCap is the hosting platform's hard request budget.
	DefaultPlatformRequestCap = 60 * time.Second
)

const (
	EnvAgentURL           = "AI_AGENT_URL"
	EnvMaxBodyBytes       = "MAX_BODY_BYTES"
	EnvUpstreamDeadlineMS = "UPSTREAM_DEADLINE_MS"
	EnvPlatformCapMS      = "PLATFORM_REQUEST_CAP_MS"
)

var (
	ErrAgentURLMissing = errors.New(EnvAgentURL + " environment variable not set")
	ErrAgentURLInvalid = errors.New(EnvAgentURL + " must be an absolute http(s) URL")
)

// EdgeConfig holds the chat edge settings. It is resolved once at startup and
// never mutated afterwards.
type EdgeConfig struct {
	// AgentBaseURL has no trailing slash. Empty when AgentURLErr is set.
	AgentBaseURL string
	// AgentURLErr records why the agent URL is unusable. Requests are answered
	// with the misconfiguration response while it is non-nil.
	AgentURLErr        error
	MaxBodyBytes       int64
	UpstreamDeadline   time.Duration
	PlatformRequestCap time.Duration
}

// AgentConfigured reports whether chat requests can be forwarded.
func (c *EdgeConfig) AgentConfigured() bool {
	return c.AgentURLErr == nil && c.AgentBaseURL != ""
}

// LoadEdgeConfigFromEnv resolves the edge config from the process environment.
func LoadEdgeConfigFromEnv() (*EdgeConfig, error) {
	return LoadEdgeConfig(os.Getenv)
}

// LoadEdgeConfig resolves the edge config through getenv. Malformed tuning
// values are returned as errors; a missing or malformed agent URL is not, it is
// recorded on the config instead.
func LoadEdgeConfig(getenv func(string) string) (*EdgeConfig, error) {
	cfg := &EdgeConfig{
		MaxBodyBytes:       DefaultMaxBodyBytes,
		UpstreamDeadline:   DefaultUpstreamDeadline,
		PlatformRequestCap: DefaultPlatformRequestCap,
	}

	cfg.AgentBaseURL, cfg.AgentURLErr = parseAgentURL(getenv(EnvAgentURL))

	if v := strings.TrimSpace(getenv(EnvMaxBodyBytes)); v != "" {
		n, err := parsePositive(EnvMaxBodyBytes, v)
		if err != nil {
			return nil, err
		}
		cfg.MaxBodyBytes = n
	}

	if v := strings.TrimSpace(getenv(EnvPlatformCapMS)); v != "" {
		n, err := parsePositive(EnvPlatformCapMS, v)
		if err != nil {
			return nil, err
		}
		cfg.PlatformRequestCap = time.Duration(n) * time.Millisecond
	}

	if v := strings.TrimSpace(getenv(EnvUpstreamDeadlineMS)); v != "" {
		n, err := parsePositive(EnvUpstreamDeadlineMS, v)
		if err != nil {
			return nil, err
		}
		cfg.UpstreamDeadline = time.Duration(n) * time.Millisecond
	}

	if cfg.UpstreamDeadline >= cfg.PlatformRequestCap {
		return nil, fmt.Errorf("%s (%s) must be less than the platform request cap (%s)",
			EnvUpstreamDeadlineMS, cfg.UpstreamDeadline, cfg.PlatformRequestCap)
	}

	return cfg, nil
}

func parseAgentURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrAgentURLMissing
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrap(ErrAgentURLInvalid, err.Error())
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrAgentURLInvalid
	}
	return strings.TrimRight(raw, "/"), nil
}

func parsePositive(name, v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return n, nil
}
