package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"series-proxy/src/helpers"
	"series-proxy/src/interfaces"
	"series-proxy/src/logger"
	"series-proxy/src/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// MissingValue is the upstream marker for an observation without data.
	MissingValue = "."

	observationLimit = 5
	keepLatest       = 2
	dateLayout       = "2006-01-02"
)

// -----------------------------------------------------------------------------

// Options carries the process-wide settings of a FredSource. They are read
// once at startup and never mutated afterwards.
type Options struct {
	BaseURL        string
	APIKey         string
	CredentialName string
	Concurrency    int
	AsOfLocation   *time.Location
}

// queryVariant is one way of asking the upstream for a series. Variants are
// tried in order; the next one is used only when the upstream rejects the
// parameters (HTTP 400).
type queryVariant struct {
	name   string
	params func(seriesID string, asOf time.Time) map[string]string
}

// -----------------------------------------------------------------------------

type FredSource struct {
	Options  Options
	Network  interfaces.INetworkManager
	Logger   *logger.Logger
	variants []queryVariant
	now      func() time.Time
}

// -----------------------------------------------------------------------------

func NewFredSource(opts Options, netMgr interfaces.INetworkManager, log *logger.Logger) *FredSource {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.AsOfLocation == nil {
		opts.AsOfLocation = time.UTC
	}
	if opts.CredentialName == "" {
		opts.CredentialName = "FRED_API_KEY"
	}

	s := &FredSource{
		Options: opts,
		Network: netMgr,
		Logger:  log,
		now:     time.Now,
	}
	s.variants = []queryVariant{
		{name: "as-of-today", params: s.asOfParams},
		{name: "latest", params: s.baseParams},
	}
	return s
}

// -----------------------------------------------------------------------------

func (s *FredSource) Name() string {
	return "fred"
}

// -----------------------------------------------------------------------------

func (s *FredSource) baseParams(seriesID string, _ time.Time) map[string]string {
	return map[string]string{
		"series_id":  seriesID,
		"api_key":    s.Options.APIKey,
		"file_type":  "json",
		"limit":      strconv.Itoa(observationLimit),
		"sort_order": "desc",
	}
}

func (s *FredSource) asOfParams(seriesID string, asOf time.Time) map[string]string {
	p := s.baseParams(seriesID, asOf)
	p["realtime_end"] = asOf.In(s.Options.AsOfLocation).Format(dateLayout)
	return p
}

// -----------------------------------------------------------------------------

// FetchSeries fetches every distinct identifier concurrently and returns the
// results in request order. A failing series never affects its siblings.
func (s *FredSource) FetchSeries(ctx context.Context, ids []string) (*models.MResultMap, error) {
	ids = models.NewSeriesRequest(ids)
	if len(ids) == 0 {
		return nil, helpers.NewValidationError("at least one series identifier is required")
	}
	if s.Options.APIKey == "" {
		return nil, helpers.NewConfigurationError("Missing " + s.Options.CredentialName)
	}

	// One slot per identifier; each goroutine owns exactly one index.
	results := make([]models.MSeriesResult, len(ids))
	asOf := s.now()

	limit := s.Options.Concurrency
	if limit > len(ids) {
		limit = len(ids)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = s.fetchOne(ctx, id, asOf)
			return nil
		})
	}
	_ = g.Wait()

	out := models.NewResultMap(len(ids))
	for i, id := range ids {
		out.Set(id, results[i])
	}

	s.Logger.Info("Fetched %d series (%d failed)", out.Len(), out.Failed())
	return out, nil
}

// -----------------------------------------------------------------------------

// fetchOne never returns an error: every failure becomes an error result.
func (s *FredSource) fetchOne(ctx context.Context, seriesID string, asOf time.Time) models.MSeriesResult {
	log := s.Logger.WithFields(logger.Fields{"series_id": seriesID})

	var resp *models.MUpstreamResponse
	for i, v := range s.variants {
		r, err := s.Network.Get(ctx, s.Options.BaseURL, v.params(seriesID, asOf))
		if err != nil {
			log.Warning("Query %s failed: %v", v.name, err)
			return models.NewErrorResult(err.Error())
		}
		resp = r

		if resp.StatusCode == http.StatusBadRequest && i < len(s.variants)-1 {
			log.Info("Query %s rejected with 400, falling back to %s", v.name, s.variants[i+1].name)
			continue
		}
		break
	}

	if !resp.IsSuccess() {
		err := helpers.NewUpstreamStatusError(resp.StatusCode)
		log.Warning("%v", err)
		return models.NewErrorResult(err.Error())
	}

	obs, err := s.parseObservations(log, resp.Body)
	if err != nil {
		log.Warning("Malformed upstream body: %v", err)
		return models.NewErrorResult(err.Error())
	}

	return models.NewObservationsResult(obs)
}

// -----------------------------------------------------------------------------

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// -----------------------------------------------------------------------------

// parseObservations drops missing and unreadable values and keeps the two
// newest observations.
func (s *FredSource) parseObservations(log *logger.Logger, body []byte) ([]models.MObservation, error) {
	var payload observationsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid upstream response: %w", err)
	}

	valid := make([]models.MObservation, 0, len(payload.Observations))
	for _, o := range payload.Observations {
		if o.Value == MissingValue {
			continue
		}
		if _, err := time.Parse(dateLayout, o.Date); err != nil {
			log.Warning("Skipping observation with bad date %q", o.Date)
			continue
		}
		value, err := decimal.NewFromString(o.Value)
		if err != nil {
			log.Warning("Skipping observation %s with bad value %q", o.Date, o.Value)
			continue
		}
		valid = append(valid, models.MObservation{Date: o.Date, Value: value})
	}

	// Upstream already sorts descending; ISO dates compare lexically.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Date > valid[j].Date
	})

	latest := make([]models.MObservation, 0, keepLatest)
	for _, o := range valid {
		if len(latest) == keepLatest {
			break
		}
		// one value per date, the first seen wins
		if len(latest) > 0 && latest[len(latest)-1].Date == o.Date {
			continue
		}
		latest = append(latest, o)
	}
	return latest, nil
}
