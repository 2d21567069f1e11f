package server

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/thesyncim/metronome/pkg/metronome"
	"github.com/thesyncim/metronome/pkg/metronome/output"
	"github.com/thesyncim/metronome/pkg/metronome/trial"
)

// apiKeyHeader must match what uploaders send.
const apiKeyHeader = "X-Api-Key"

type handlers struct {
	store  *Store
	apiKey string

	indexTpl *template.Template
	runTpl   *template.Template
}

func newHandlers(store *Store, apiKey string) *handlers {
	return &handlers{
		store:    store,
		apiKey:   apiKey,
		indexTpl: template.Must(template.New("index").Parse(indexHTML)),
		runTpl:   template.Must(template.New("run").Parse(runHTML)),
	}
}

// handleUpload accepts one trial document per request.
func (h *handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.apiKey != "" && r.Header.Get(apiKeyHeader) != h.apiKey {
		http.Error(w, "missing or wrong API key", http.StatusUnauthorized)
		return
	}

	var result trial.Result
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		http.Error(w, "invalid trial document", http.StatusBadRequest)
		return
	}
	if result.RunID == uuid.Nil || result.Benchmark == "" {
		http.Error(w, "trial document needs a run id and a benchmark name", http.StatusBadRequest)
		return
	}

	h.store.Add(&result)
	log.WithFields(log.Fields{
		"run":       result.RunID,
		"benchmark": result.Benchmark,
		"trial":     result.Trial,
	}).Info("trial stored")
	w.WriteHeader(http.StatusCreated)
}

// runView is the template model for one run page.
type runView struct {
	ID         string
	Benchmarks []benchmarkView
}

type benchmarkView struct {
	Name   string
	Kind   string
	Trials int
	Stats  output.Statistics
}

// handleRun renders the summary page for one run.
func (h *handlers) handleRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "malformed run id", http.StatusBadRequest)
		return
	}
	results, ok := h.store.Run(id)
	if !ok {
		http.Error(w, "unknown run", http.StatusNotFound)
		return
	}

	view := runView{ID: id.String()}
	index := make(map[string]int)
	perBench := make(map[string][]metronome.Measurement)
	for _, result := range results {
		i, ok := index[result.Benchmark]
		if !ok {
			i = len(view.Benchmarks)
			index[result.Benchmark] = i
			view.Benchmarks = append(view.Benchmarks, benchmarkView{
				Name: result.Benchmark,
				Kind: result.Kind,
			})
		}
		view.Benchmarks[i].Trials++
		perBench[result.Benchmark] = append(perBench[result.Benchmark], result.Measurements...)
	}
	for i := range view.Benchmarks {
		view.Benchmarks[i].Stats = output.ComputeStatistics(perBench[view.Benchmarks[i].Name])
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.runTpl.Execute(w, view); err != nil {
		log.WithError(err).Warn("rendering run page failed")
	}
}

// handleIndex lists the stored runs.
func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	type runRow struct {
		ID     string
		Trials int
	}
	var rows []runRow
	for _, id := range h.store.Runs() {
		rows = append(rows, runRow{ID: id.String(), Trials: h.store.TrialCount(id)})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.indexTpl.Execute(w, rows); err != nil {
		log.WithError(err).Warn("rendering index page failed")
	}
}
