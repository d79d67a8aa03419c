package scheduling

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"gopkg.in/yaml.v3"
)

// Environment describes one compute environment an adapter can be
// selected for. IsPresent is a cheap probe with no side effects.
type Environment interface {
	Name() string
	IsPresent() bool
	Scheduler() (Scheduler, error)
}

// EnvironmentSpec is one entry of the project's environments file: a
// named cluster environment recognized by hostname pattern and driven
// through its queue commands.
type EnvironmentSpec struct {
	Name            string   `yaml:"name"`
	HostnamePattern string   `yaml:"hostname_pattern"`
	SubmitCmd       []string `yaml:"submit_cmd"`
	ListCmd         []string `yaml:"list_cmd"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
}

// LoadEnvironmentSpecs reads the environments file. A missing file is
// not an error: the project simply has no cluster environments.
func LoadEnvironmentSpecs(path string) ([]EnvironmentSpec, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read environments file: %w", err)
	}
	var specs []EnvironmentSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("malformed environments file %s: %w", path, err)
	}
	return specs, nil
}

// clusterEnvironment matches a host by name pattern and yields a
// CommandScheduler.
type clusterEnvironment struct {
	spec     EnvironmentSpec
	hostname func() (string, error)
}

// NewClusterEnvironment builds an environment from its spec.
func NewClusterEnvironment(spec EnvironmentSpec) Environment {
	return &clusterEnvironment{spec: spec, hostname: systemHostname}
}

func systemHostname() (string, error) {
	info, err := host.Info()
	if err != nil {
		return "", err
	}
	return info.Hostname, nil
}

func (e *clusterEnvironment) Name() string { return e.spec.Name }

func (e *clusterEnvironment) IsPresent() bool {
	if e.spec.HostnamePattern == "" {
		return false
	}
	re, err := regexp.Compile(e.spec.HostnamePattern)
	if err != nil {
		return false
	}
	hostname, err := e.hostname()
	if err != nil {
		return false
	}
	return re.MatchString(hostname)
}

func (e *clusterEnvironment) Scheduler() (Scheduler, error) {
	timeout := time.Duration(e.spec.TimeoutSeconds) * time.Second
	return NewCommandScheduler(e.spec.SubmitCmd, e.spec.ListCmd, timeout)
}

// nullEnvironment is the fallback when nothing probes present.
type nullEnvironment struct{}

func (nullEnvironment) Name() string                  { return "none" }
func (nullEnvironment) IsPresent() bool               { return true }
func (nullEnvironment) Scheduler() (Scheduler, error) { return NewNullScheduler(), nil }

// NullEnvironment returns the always-present fallback environment.
func NullEnvironment() Environment { return nullEnvironment{} }

// SimEnvironment wraps an injected SimScheduler instance so test and
// rehearsal runs share one queue view across components.
type SimEnvironment struct {
	Sim *SimScheduler
}

func (e *SimEnvironment) Name() string                  { return "sim" }
func (e *SimEnvironment) IsPresent() bool               { return true }
func (e *SimEnvironment) Scheduler() (Scheduler, error) { return e.Sim, nil }

// DetectEnvironment probes candidates in priority order and returns the
// first present one, falling back to the null environment.
func DetectEnvironment(envs []Environment) Environment {
	for _, env := range envs {
		if env.IsPresent() {
			return env
		}
	}
	return NullEnvironment()
}
