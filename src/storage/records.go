package storage

import (
	"time"

	"series-proxy/src/models"

	"github.com/google/uuid"
)

// RecordsFromResults turns a result map into fetch log rows, one per series.
func RecordsFromResults(results *models.MResultMap, requestID, source string, at time.Time) []models.MFetchRecord {
	if results == nil {
		return nil
	}

	records := make([]models.MFetchRecord, 0, results.Len())
	for _, id := range results.Keys() {
		r, _ := results.Get(id)
		rec := models.MFetchRecord{
			ID:        uuid.NewString(),
			RequestID: requestID,
			Source:    source,
			SeriesID:  id,
			FetchedAt: at.UTC(),
		}
		if r.IsError() {
			rec.Status = models.FetchStatusError
			rec.Error = r.Error
		} else {
			rec.Status = models.FetchStatusOK
			rec.ObservationCount = len(r.Observations)
			if len(r.Observations) > 0 {
				rec.LatestDate = r.Observations[0].Date
				rec.LatestValue = r.Observations[0].Value.String()
			}
		}
		records = append(records, rec)
	}
	return records
}
