// Package config defines the immutable run configuration for stackup.
//
// Everything the original provisioning flow hardcoded — project name,
// descriptor path, service names, ports, minimum runtime version, poll
// timing — lives in one Config value constructed before the pipeline runs
// and passed to each component explicitly. Components never reach into
// process-wide variables.
//
// Operators can override the compiled-in defaults with an optional
// stackup.jsonc file. JSONC (JSON with Comments) is supported via
// github.com/tidwall/jsonc so the config file can be annotated; comments
// are stripped before parsing with the standard encoding/json library.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/stackup/internal/model"
)

// DefaultFileName is the config file probed in the working directory when
// no --config flag is given. Its absence is not an error; the compiled-in
// defaults apply.
const DefaultFileName = "stackup.jsonc"

// Config holds the full run configuration. The value is immutable after
// construction: every component receives it by value at construction time.
type Config struct {
	// ProjectName is the Compose project name the stack is converged under.
	// Compose uses it to prefix container, network, and volume names, and
	// stamps it on every container as the com.docker.compose.project label,
	// which is how the prober finds the stack's containers.
	ProjectName string

	// DescriptorPath is the path to the compose descriptor file declaring
	// the service topology.
	DescriptorPath string

	// FrontendService, BackendService, and DatabaseService are the Compose
	// service names of the three tiers. Startup order is database, then
	// backend, then frontend.
	FrontendService string
	BackendService  string
	DatabaseService string

	// FrontendPort is the host port the frontend publishes; the post-ready
	// HTTP smoke check targets it.
	FrontendPort int

	// DatabaseReadyLine is the log line fragment the database engine emits
	// once it accepts connections. The post-ready log check scans the
	// database container's output for it.
	DatabaseReadyLine string

	// MinDockerVersion is the minimum acceptable Docker Engine version,
	// as a dotted version string (e.g., "24.0").
	MinDockerVersion string

	// PollInterval is the fixed sleep between readiness poll ticks.
	PollInterval time.Duration

	// PollCeiling is the total readiness deadline. The prober performs at
	// most PollCeiling / PollInterval ticks before declaring a timeout.
	PollCeiling time.Duration

	// SmokeTimeout bounds each best-effort smoke check request.
	SmokeTimeout time.Duration
}

// fileConfig is the on-disk shape of stackup.jsonc. Durations are expressed
// in whole seconds because that is what operators expect to write in a
// config file; they are converted to time.Duration during load. Zero-valued
// fields mean "keep the default".
type fileConfig struct {
	ProjectName         string `json:"projectName"`
	DescriptorPath      string `json:"descriptorPath"`
	FrontendService     string `json:"frontendService"`
	BackendService      string `json:"backendService"`
	DatabaseService     string `json:"databaseService"`
	FrontendPort        int    `json:"frontendPort"`
	DatabaseReadyLine   string `json:"databaseReadyLine"`
	MinDockerVersion    string `json:"minDockerVersion"`
	PollIntervalSeconds int    `json:"pollIntervalSeconds"`
	PollCeilingSeconds  int    `json:"pollCeilingSeconds"`
	SmokeTimeoutSeconds int    `json:"smokeTimeoutSeconds"`
}

// Default returns the compiled-in configuration: a three-tier stack named
// "appstack" described by ./docker-compose.yml, frontend on port 8080,
// a PostgreSQL-style database ready line, and the 5s/60s poll contract.
func Default() Config {
	return Config{
		ProjectName:       "appstack",
		DescriptorPath:    "docker-compose.yml",
		FrontendService:   "frontend",
		BackendService:    "backend",
		DatabaseService:   "database",
		FrontendPort:      8080,
		DatabaseReadyLine: "database system is ready to accept connections",
		MinDockerVersion:  "24.0",
		PollInterval:      5 * time.Second,
		PollCeiling:       60 * time.Second,
		SmokeTimeout:      5 * time.Second,
	}
}

// Load builds the run configuration. When path is empty, DefaultFileName is
// probed in the working directory and silently skipped if absent. When path
// is given explicitly (--config), a missing file is an error — an operator
// naming a file expects it to be used.
//
// The file overlays the defaults field by field: anything the file leaves
// zero keeps its default value.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read config file %q", path), err)
	}

	// Strip JSONC comments and trailing commas, then parse as plain JSON.
	var fc fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
		return Config{}, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to parse config file %q", path), err)
	}

	cfg = overlay(cfg, fc)
	if err := cfg.Validate(); err != nil {
		return Config{}, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid config file %q", path), err)
	}
	return cfg, nil
}

// overlay applies the non-zero fields of a fileConfig on top of a base
// Config. This is a pure function so it can be tested without touching
// the filesystem.
func overlay(base Config, fc fileConfig) Config {
	if fc.ProjectName != "" {
		base.ProjectName = fc.ProjectName
	}
	if fc.DescriptorPath != "" {
		base.DescriptorPath = fc.DescriptorPath
	}
	if fc.FrontendService != "" {
		base.FrontendService = fc.FrontendService
	}
	if fc.BackendService != "" {
		base.BackendService = fc.BackendService
	}
	if fc.DatabaseService != "" {
		base.DatabaseService = fc.DatabaseService
	}
	if fc.FrontendPort != 0 {
		base.FrontendPort = fc.FrontendPort
	}
	if fc.DatabaseReadyLine != "" {
		base.DatabaseReadyLine = fc.DatabaseReadyLine
	}
	if fc.MinDockerVersion != "" {
		base.MinDockerVersion = fc.MinDockerVersion
	}
	if fc.PollIntervalSeconds != 0 {
		base.PollInterval = time.Duration(fc.PollIntervalSeconds) * time.Second
	}
	if fc.PollCeilingSeconds != 0 {
		base.PollCeiling = time.Duration(fc.PollCeilingSeconds) * time.Second
	}
	if fc.SmokeTimeoutSeconds != 0 {
		base.SmokeTimeout = time.Duration(fc.SmokeTimeoutSeconds) * time.Second
	}
	return base
}

// Validate checks the configuration for internal consistency. It is called
// after loading a config file; Default() is valid by construction but is
// covered by tests against this same method.
func (c Config) Validate() error {
	if c.ProjectName == "" {
		return fmt.Errorf("project name must not be empty")
	}
	if c.DescriptorPath == "" {
		return fmt.Errorf("descriptor path must not be empty")
	}
	for _, svc := range []string{c.FrontendService, c.BackendService, c.DatabaseService} {
		if svc == "" {
			return fmt.Errorf("service names must not be empty")
		}
	}
	if c.FrontendPort < 1 || c.FrontendPort > 65535 {
		return fmt.Errorf("frontend port %d out of range (1-65535)", c.FrontendPort)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.PollCeiling < c.PollInterval {
		return fmt.Errorf("poll ceiling %s must be at least the poll interval %s",
			c.PollCeiling, c.PollInterval)
	}
	if c.SmokeTimeout <= 0 {
		return fmt.Errorf("smoke timeout must be positive, got %s", c.SmokeTimeout)
	}
	return nil
}

// Services returns the configured service names in declared startup order:
// database first, backend second, frontend last. The prober and reporter
// both iterate in this order so output is deterministic.
func (c Config) Services() []string {
	return []string{c.DatabaseService, c.BackendService, c.FrontendService}
}

// MaxTicks returns the number of poll iterations the prober may perform
// before declaring a timeout: ceiling divided by interval, with a floor of
// one so a ceiling shorter than the interval still yields a single probe.
func (c Config) MaxTicks() int {
	n := int(c.PollCeiling / c.PollInterval)
	if n < 1 {
		n = 1
	}
	return n
}
