package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"sellerlift/backend/pkg/logger"
)

// Status of a single checked component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Component is the reported state of one dependency.
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// CheckFunc probes one dependency and describes what it found.
type CheckFunc func() (Status, string, error)

type registeredCheck struct {
	fn       CheckFunc
	critical bool
}

// Checker runs registered dependency probes on a fixed period and serves
// the latest results. Only critical components being down makes the
// overall report unhealthy; degraded dependencies keep the service up.
type Checker struct {
	period time.Duration
	log    *logger.Logger

	mu         sync.RWMutex
	checks     map[string]registeredCheck
	components map[string]*Component
}

func NewChecker(log *logger.Logger, period time.Duration) *Checker {
	return &Checker{
		period:     period,
		log:        log,
		checks:     make(map[string]registeredCheck),
		components: make(map[string]*Component),
	}
}

// RegisterCheck adds a probe. Critical probes gate the overall status.
func (c *Checker) RegisterCheck(name string, critical bool, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = registeredCheck{fn: fn, critical: critical}
	c.components[name] = &Component{
		Name:        name,
		Status:      StatusDown,
		Description: "not checked yet",
	}
}

// RegisterDatabaseCheck gates overall health on the primary store.
func (c *Checker) RegisterDatabaseCheck(ping func() error) {
	c.RegisterCheck("database", true, func() (Status, string, error) {
		if err := ping(); err != nil {
			return StatusDown, "database unreachable", err
		}
		return StatusUp, "database reachable", nil
	})
}

// RegisterRedisCheck reports presence and live updates as degraded when
// Redis is unreachable. The dashboard keeps working without it.
func (c *Checker) RegisterRedisCheck(ping func() error) {
	c.RegisterCheck("redis", false, func() (Status, string, error) {
		if err := ping(); err != nil {
			return StatusDegraded, "redis unreachable; presence and live updates degraded", err
		}
		return StatusUp, "redis reachable", nil
	})
}

// Start runs all checks immediately, then on every period tick.
func (c *Checker) Start() {
	go func() {
		c.RunChecks()
		ticker := time.NewTicker(c.period)
		defer ticker.Stop()
		for range ticker.C {
			c.RunChecks()
		}
	}()
}

// RunChecks executes every registered probe once.
func (c *Checker) RunChecks() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, check := range c.checks {
		status, description, err := check.fn()

		component := c.components[name]
		component.Status = status
		component.Description = description
		component.LastChecked = time.Now()
		component.Error = ""

		if err != nil {
			component.Error = err.Error()
			c.log.Error("Health check failed",
				"component", name,
				"status", string(status),
				"error", err.Error(),
			)
		}
	}
}

// Snapshot returns a copy of the latest component states.
func (c *Checker) Snapshot() map[string]*Component {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*Component, len(c.components))
	for name, component := range c.components {
		copied := *component
		out[name] = &copied
	}
	return out
}

// Healthy reports whether every critical component is up.
func (c *Checker) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, check := range c.checks {
		if check.critical && c.components[name].Status == StatusDown {
			return false
		}
	}
	return true
}

// HTTPHandler serves the component report, 503 when unhealthy.
func (c *Checker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthy := c.Healthy()

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		status := "ok"
		if !healthy {
			status = "unhealthy"
		}
		response := map[string]interface{}{
			"status":     status,
			"timestamp":  time.Now(),
			"components": c.Snapshot(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			c.log.Error("Failed to encode health response", "error", err.Error())
		}
	}
}
