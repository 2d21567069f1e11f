package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/thesyncim/metronome/pkg/metronome/trial"
)

const (
	// trialsPath is where collectors accept trial documents.
	trialsPath = "/data/trials"
	// runPathFormat is where an uploaded run can be browsed.
	runPathFormat = "/runs/%s"

	// apiKeyHeader authenticates uploads when an API key is configured.
	apiKeyHeader = "X-Api-Key"
)

// UploaderConfig configures an Uploader.
type UploaderConfig struct {
	// URL is the collector base URL, e.g. "http://localhost:9382".
	URL string
	// APIKey optionally authenticates uploads. When set it must be a UUID;
	// anything else is a configuration error at construction. Empty uploads
	// anonymously.
	APIKey string
	// Client overrides the HTTP client.
	// Default: a client with a 10 second timeout
	Client *http.Client
	// Attempts bounds how many times each trial POST is tried.
	// Default: 3
	Attempts uint
}

// Uploader posts every processed trial to a results collector. Sending is
// asynchronous on one goroutine, so processing never blocks on the network
// for long; after the first upload that exhausts its retries the uploader
// latches failed and silently drops the remaining trials, keeping a broken
// collector from taking the benchmark run down with it.
type Uploader struct {
	cfg    UploaderConfig
	client *http.Client

	queue chan *trial.Result
	done  chan struct{}

	failed   atomic.Bool
	uploaded atomic.Int64
	runID    atomic.Value // uuid.UUID of the first processed trial
}

// NewUploader validates cfg and starts the sender goroutine.
func NewUploader(cfg UploaderConfig) (*Uploader, error) {
	if cfg.URL == "" {
		return nil, errors.New("uploader needs a collector URL")
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid collector URL %q", cfg.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.Errorf("collector URL %q must be http or https", cfg.URL)
	}
	if cfg.APIKey != "" {
		if _, err := uuid.Parse(cfg.APIKey); err != nil {
			return nil, errors.Wrap(err, "API key must be a UUID")
		}
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	u := &Uploader{
		cfg:    cfg,
		client: cfg.Client,
		queue:  make(chan *trial.Result, 64),
		done:   make(chan struct{}),
	}
	go u.sendLoop()
	return u, nil
}

// ProcessTrial queues the result for upload. It must not be called after
// Close.
func (u *Uploader) ProcessTrial(result *trial.Result) error {
	u.runID.CompareAndSwap(nil, result.RunID)
	u.queue <- result
	return nil
}

// Close flushes the queue, stops the sender and logs where the run can be
// browsed. It returns an error if any upload failed.
func (u *Uploader) Close() error {
	close(u.queue)
	<-u.done
	if u.failed.Load() {
		return errors.Errorf("upload to %s failed; results for this run are incomplete", u.cfg.URL)
	}
	if n := u.uploaded.Load(); n > 0 {
		resultsURL, _ := u.ResultsURL()
		log.WithFields(log.Fields{"trials": n, "url": resultsURL}).Info("results uploaded")
	}
	return nil
}

// ResultsURL returns the browse URL of the uploaded run. It reports false
// until the first trial has been processed, because the run id comes from the
// results themselves.
func (u *Uploader) ResultsURL() (string, bool) {
	runID, ok := u.runID.Load().(uuid.UUID)
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(u.cfg.URL, "/") + fmt.Sprintf(runPathFormat, runID), true
}

func (u *Uploader) sendLoop() {
	defer close(u.done)
	for result := range u.queue {
		if u.failed.Load() {
			continue
		}
		if err := u.post(result); err != nil {
			log.WithError(err).WithField("benchmark", result.Benchmark).
				Warn("trial upload failed; dropping the rest of the run")
			u.failed.Store(true)
			continue
		}
		u.uploaded.Add(1)
	}
}

func (u *Uploader) post(result *trial.Result) error {
	body, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encoding trial")
	}

	postURL := strings.TrimSuffix(u.cfg.URL, "/") + trialsPath
	return retry.Do(
		func() error {
			req, err := http.NewRequest(http.MethodPost, postURL, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			if u.cfg.APIKey != "" {
				req.Header.Set(apiKeyHeader, u.cfg.APIKey)
			}

			resp, err := u.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return errors.Errorf("collector returned %s", resp.Status)
			}
			return nil
		},
		retry.Attempts(u.cfg.Attempts),
		retry.LastErrorOnly(true),
	)
}
