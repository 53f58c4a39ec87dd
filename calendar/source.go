package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// SOURCE - External holiday feed (pull interface)
// =============================================================================

// Source pulls the full holiday set for one year. Implementations must
// either return a complete, valid year or an error - never a partial set.
type Source interface {
	FetchYear(ctx context.Context, year int) ([]Holiday, error)
}

// =============================================================================
// HTTP SOURCE
// =============================================================================

// HTTPSource fetches holidays from a JSON feed. The feed returns an array
// of records per queried year:
//
//	[{"date":"2025-01-01","name":"신정","type":"public","remarks":""}, ...]
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type sourceRecord struct {
	Date    string `json:"date"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Remarks string `json:"remarks"`
}

func (s *HTTPSource) FetchYear(ctx context.Context, year int) ([]Holiday, error) {
	url := fmt.Sprintf("%s?year=%d", s.BaseURL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &labor.UpstreamError{Source: "holiday feed", Year: year, Message: err.Error()}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &labor.UpstreamError{Source: "holiday feed", Year: year, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &labor.UpstreamError{Source: "holiday feed", Year: year,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var records []sourceRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &labor.UpstreamError{Source: "holiday feed", Year: year,
			Message: "malformed payload: " + err.Error()}
	}

	return convertRecords(records, year)
}

// convertRecords validates the full payload before anything is accepted.
// One bad record rejects the year.
func convertRecords(records []sourceRecord, year int) ([]Holiday, error) {
	holidays := make([]Holiday, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		date, err := labor.ParseDate(r.Date)
		if err != nil {
			return nil, &labor.UpstreamError{Source: "holiday feed", Year: year,
				Message: "unparseable date " + r.Date}
		}
		if date.Year() != year {
			return nil, &labor.UpstreamError{Source: "holiday feed", Year: year,
				Message: fmt.Sprintf("record %s outside requested year", r.Date)}
		}
		if r.Name == "" {
			return nil, &labor.UpstreamError{Source: "holiday feed", Year: year,
				Message: "record " + r.Date + " has no name"}
		}
		if seen[r.Date] {
			return nil, &labor.UpstreamError{Source: "holiday feed", Year: year,
				Message: "duplicate date " + r.Date}
		}
		seen[r.Date] = true

		holidays = append(holidays, Holiday{
			ID:        labor.NewID(),
			Date:      date,
			Name:      r.Name,
			Type:      r.Type,
			Remarks:   r.Remarks,
			CreatedAt: time.Now().UTC(),
		})
	}
	return holidays, nil
}

// =============================================================================
// STATIC SOURCE - Fixed holiday set (tests, offline operation)
// =============================================================================

type StaticSource struct {
	Holidays []Holiday
	Err      error // returned instead, when set
}

func (s *StaticSource) FetchYear(_ context.Context, year int) ([]Holiday, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []Holiday
	for _, h := range s.Holidays {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out, nil
}
