package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"series-proxy/src/helpers"
	"series-proxy/src/logger"
	"series-proxy/src/models"
	"series-proxy/src/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultFetchLogLimit = 20
	maxFetchLogLimit     = 500
)

func newRequestID() string {
	return uuid.NewString()
}

// -----------------------------------------------------------------------------
// Series Proxy
// -----------------------------------------------------------------------------

type seriesBody struct {
	SeriesID string `json:"series_id"`
}

// seriesParam reads series_id from the query string, then from a POST form
// field or JSON body.
func seriesParam(c *gin.Context) string {
	if raw := c.Query("series_id"); strings.TrimSpace(raw) != "" {
		return raw
	}
	if c.Request.Method != http.MethodPost {
		return ""
	}

	if c.ContentType() == gin.MIMEJSON {
		var body seriesBody
		if err := c.ShouldBindJSON(&body); err != nil {
			return ""
		}
		return body.SeriesID
	}
	return c.PostForm("series_id")
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleSeries(c *gin.Context) {
	ids := models.ParseSeriesIDs(seriesParam(c))
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing series_id"})
		return
	}

	requestID := c.GetString(requestIDKey)
	results, err := s.Source.FetchSeries(c.Request.Context(), ids)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.recordFetches(requestID, models.FetchSourceAPI, results)
	c.JSON(http.StatusOK, results)
}

// -----------------------------------------------------------------------------

func (s *APIServer) writeError(c *gin.Context, err error) {
	var validationErr *helpers.ValidationError
	var configErr *helpers.ConfigurationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &configErr):
		s.Logger.Error("Configuration error: %v", configErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": configErr.Error()})
	default:
		s.Logger.Error("Request %s failed: %v", c.GetString(requestIDKey), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// -----------------------------------------------------------------------------

// recordFetches writes one fetch log row per series. Failures are only logged.
func (s *APIServer) recordFetches(requestID, source string, results *models.MResultMap) {
	if s.DB == nil {
		return
	}
	records := storage.RecordsFromResults(results, requestID, source, time.Now())
	if err := s.DB.SaveFetchRecords(records); err != nil {
		s.Logger.WithFields(logger.Fields{"request_id": requestID}).Warning("Failed to record fetches: %v", err)
	}
}

// -----------------------------------------------------------------------------
// Live API
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	var timestamp int64
	s.stateMutex.RLock()
	if s.latestState != nil {
		timestamp = s.latestState.Timestamp
	}
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getConfig(c *gin.Context) {
	series := s.Config.Watchlist.Series
	interval := s.Config.Watchlist.UpdateIntervalSeconds
	if s.Watchlist != nil {
		series = s.Watchlist.Series()
		interval = int(s.Watchlist.Interval() / time.Second)
	}
	if series == nil {
		series = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"watchlist":               series,
		"watchlist_enabled":       s.Config.Watchlist.Enabled,
		"update_interval_seconds": interval,
		"storage":                 s.Config.Storage.DBType,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getWatchlist(c *gin.Context) {
	s.stateMutex.RLock()
	latest := s.latestState
	s.stateMutex.RUnlock()

	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getFetchLog(c *gin.Context) {
	if s.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage disabled"})
		return
	}

	seriesID := strings.TrimSpace(c.Query("series_id"))
	if seriesID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing series_id"})
		return
	}

	limit := defaultFetchLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxFetchLogLimit)
	}

	records, err := s.DB.RecentFetches(seriesID, limit)
	if err != nil {
		s.Logger.Error("Failed to read fetch log for %s: %v", seriesID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read fetch log"})
		return
	}
	if records == nil {
		records = []models.MFetchRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"series_id": seriesID,
		"records":   records,
	})
}
