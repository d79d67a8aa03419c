// flowforge-exporter serves Prometheus metrics over a project's store.
// It opens the store read-only alongside the CLI and reports pool size,
// bundle statuses and the current eligibility backlog.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/flowforge/flowforge/pkg/project"
	"github.com/flowforge/flowforge/pkg/workflow"
)

type exporter struct {
	project   *project.Project
	startTime time.Time

	registry    *promclient.Registry
	jobsTotal   promclient.Gauge
	bundles     *promclient.GaugeVec
	eligibleOps promclient.Gauge
	uptime      promclient.Gauge
}

func newExporter(p *project.Project) *exporter {
	e := &exporter{
		project:   p,
		startTime: time.Now(),
		registry:  promclient.NewRegistry(),
		jobsTotal: promclient.NewGauge(promclient.GaugeOpts{
			Name: "flowforge_jobs_total",
			Help: "Number of jobs in the project pool",
		}),
		bundles: promclient.NewGaugeVec(promclient.GaugeOpts{
			Name: "flowforge_bundles",
			Help: "Tracked bundles by status",
		}, []string{"status"}),
		eligibleOps: promclient.NewGauge(promclient.GaugeOpts{
			Name: "flowforge_eligible_operations",
			Help: "Operations currently eligible across the pool",
		}),
		uptime: promclient.NewGauge(promclient.GaugeOpts{
			Name: "flowforge_exporter_uptime_seconds",
			Help: "Exporter uptime in seconds",
		}),
	}
	e.registry.MustRegister(e.jobsTotal, e.bundles, e.eligibleOps, e.uptime)
	return e
}

// collect refreshes every gauge from the store.
func (e *exporter) collect() error {
	jobs, err := e.project.Jobs()
	if err != nil {
		return fmt.Errorf("collecting jobs: %w", err)
	}
	e.jobsTotal.Set(float64(len(jobs)))

	eligible := 0
	for _, job := range jobs {
		jobOps, err := e.project.NextOperations(job)
		if err != nil {
			// A broken predicate on one job must not take down the
			// whole scrape.
			log.Printf("[Exporter] classification error for job %s: %v", job.ID, err)
			continue
		}
		eligible += len(jobOps)
	}
	e.eligibleOps.Set(float64(eligible))

	records, err := e.project.Store.AllBundles()
	if err != nil {
		return fmt.Errorf("collecting bundles: %w", err)
	}
	e.bundles.Reset()
	for _, rec := range records {
		e.bundles.WithLabelValues(rec.Status.String()).Inc()
	}

	e.uptime.Set(time.Since(e.startTime).Seconds())
	return nil
}

// handleMetrics serves Prometheus-compatible metrics at /metrics
func (e *exporter) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if err := e.collect(); err != nil {
		http.Error(w, fmt.Sprintf("Error collecting metrics: %v", err), http.StatusInternalServerError)
		return
	}

	metricFamilies, err := e.registry.Gather()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error gathering metrics: %v", err), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range metricFamilies {
		if err := encoder.Encode(mf); err != nil {
			log.Printf("[Exporter] error encoding metric %s: %v", mf.GetName(), err)
		}
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write(buf.Bytes())
}

// handleHealth reports store reachability.
func (e *exporter) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := e.project.Store.HealthCheck(); err != nil {
		status = fmt.Sprintf("unhealthy: %v", err)
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  status,
		"project": e.project.Name,
	})
}

func main() {
	var (
		listenAddr  = flag.String("listen", ":9110", "listen address")
		projectRoot = flag.String("project", ".", "project root directory")
	)
	flag.Parse()

	p, err := project.Open(*projectRoot, workflow.Registry())
	if err != nil {
		log.Fatalf("[Exporter] cannot open project: %v", err)
	}
	defer p.Close()

	e := newExporter(p)
	router := mux.NewRouter()
	router.HandleFunc("/metrics", e.handleMetrics).Methods("GET")
	router.HandleFunc("/health", e.handleHealth).Methods("GET")

	log.Printf("[Exporter] serving metrics for project %q on %s", p.Name, *listenAddr)
	if err := http.ListenAndServe(*listenAddr, router); err != nil {
		log.Fatalf("[Exporter] server failed: %v", err)
	}
}
