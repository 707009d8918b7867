package server

import (
	"time"

	"github.com/openshelf/metadata-service/internal/aggregate"
	"github.com/openshelf/metadata-service/internal/conflict"
	"github.com/openshelf/metadata-service/internal/domain"
)

// Search response types for JSON serialization.

type searchResponse struct {
	Results   []recordResponse          `json:"results"`
	Consensus *consensusResponse        `json:"consensus,omitempty"`
	Providers map[string]providerStatus `json:"providers"`
	Preview   []fieldPreviewJSON        `json:"preview,omitempty"`
	Conflicts *conflictReport           `json:"conflicts,omitempty"`
}

// fieldPreviewJSON is one field of the best edition with every source's
// claim, so callers can see where each value came from.
type fieldPreviewJSON struct {
	Field      string              `json:"field"`
	Value      string              `json:"value,omitempty"`
	Claims     []conflictClaimJSON `json:"claims,omitempty"`
	Conflicted bool                `json:"conflicted,omitempty"`
}

type recordResponse struct {
	ID              string          `json:"id,omitempty"`
	Provider        string          `json:"provider"`
	Confidence      float64         `json:"confidence"`
	Title           string          `json:"title,omitempty"`
	Authors         []string        `json:"authors,omitempty"`
	ISBN            []string        `json:"isbn,omitempty"`
	Publisher       string          `json:"publisher,omitempty"`
	PublicationDate string          `json:"publication_date,omitempty"`
	Language        string          `json:"language,omitempty"`
	PageCount       int             `json:"page_count,omitempty"`
	Subjects        []string        `json:"subjects,omitempty"`
	Description     string          `json:"description,omitempty"`
	Series          *seriesResponse `json:"series,omitempty"`
	Edition         string          `json:"edition,omitempty"`
	CoverImage      string          `json:"cover_image,omitempty"`
}

type seriesResponse struct {
	Name   string `json:"name"`
	Volume *int   `json:"volume,omitempty"`
}

type consensusResponse struct {
	Confidence     float64  `json:"confidence"`
	AgreementScore float64  `json:"agreement_score"`
	Tier           string   `json:"tier"`
	Penalties      []string `json:"penalties,omitempty"`
}

type providerStatus struct {
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type conflictReport struct {
	Total           int                `json:"total"`
	BySeverity      map[string]int     `json:"by_severity,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Details         []conflictResponse `json:"details,omitempty"`
}

type conflictResponse struct {
	Field          string              `json:"field"`
	Type           string              `json:"type"`
	Severity       string              `json:"severity"`
	Values         []conflictClaimJSON `json:"values"`
	Resolution     string              `json:"resolution"`
	AutoResolvable bool                `json:"auto_resolvable"`
	Impact         string              `json:"impact,omitempty"`
}

type conflictClaimJSON struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// toSearchResponse converts an aggregation outcome to the wire shape,
// building the field preview and conflict report for the best edition
// against the raw provider records.
func (s *Server) toSearchResponse(result *aggregate.AggregatedResult) searchResponse {
	resp := searchResponse{
		Results:   make([]recordResponse, 0, len(result.Results)),
		Providers: make(map[string]providerStatus, len(result.Timing)),
	}
	for _, r := range result.Results {
		resp.Results = append(resp.Results, toRecordResponse(r))
	}
	for name, took := range result.Timing {
		st := providerStatus{DurationMS: took.Milliseconds()}
		if err, ok := result.Errors[name]; ok {
			st.Error = err.Error()
		}
		resp.Providers[name] = st
	}
	if result.Consensus != nil {
		resp.Consensus = &consensusResponse{
			Confidence:     result.Consensus.Confidence,
			AgreementScore: result.Consensus.AgreementScore,
			Tier:           string(result.Consensus.Factors.Tier),
			Penalties:      result.Consensus.Factors.Penalties,
		}
	}

	var raw []*domain.MetadataRecord
	for _, records := range result.ProviderResults {
		raw = append(raw, records...)
	}
	best := conflict.SelectBestEdition(result.Results)
	if best == nil {
		return resp
	}

	preview := s.detector.Preview(best, raw)
	for _, f := range preview.Fields {
		fp := fieldPreviewJSON{
			Field:      string(f.Field),
			Value:      f.Value,
			Conflicted: f.Conflicted,
		}
		for _, c := range f.Claims {
			fp.Claims = append(fp.Claims, conflictClaimJSON{Value: c.Value, Source: c.Source})
		}
		resp.Preview = append(resp.Preview, fp)
	}

	if len(preview.Conflicts) > 0 {
		summary := preview.Summary
		report := &conflictReport{
			Total:           summary.Total,
			BySeverity:      make(map[string]int, len(summary.BySeverity)),
			Recommendations: summary.Recommendations,
		}
		for sev, n := range summary.BySeverity {
			report.BySeverity[string(sev)] = n
		}
		for _, c := range preview.Conflicts {
			cr := conflictResponse{
				Field:          string(c.Field),
				Type:           string(c.Type),
				Severity:       string(c.Severity),
				Resolution:     c.Resolution,
				AutoResolvable: c.AutoResolvable,
				Impact:         c.Impact,
			}
			for _, v := range c.Values {
				cr.Values = append(cr.Values, conflictClaimJSON{Value: v.Value, Source: v.Source})
			}
			report.Details = append(report.Details, cr)
		}
		resp.Conflicts = report
	}
	return resp
}

func toRecordResponse(r *domain.MetadataRecord) recordResponse {
	out := recordResponse{
		ID:              r.ID,
		Provider:        r.Provider,
		Confidence:      r.Confidence,
		Title:           r.Title,
		Authors:         r.Authors,
		ISBN:            r.ISBN,
		Publisher:       r.Publisher,
		PublicationDate: r.PublicationDate,
		Language:        r.Language,
		PageCount:       r.PageCount,
		Subjects:        r.Subjects,
		Description:     r.Description,
		Edition:         r.Edition,
		CoverImage:      r.CoverImage,
	}
	if out.Provider == "" {
		out.Provider = r.Source
	}
	if r.Series != nil {
		out.Series = &seriesResponse{Name: r.Series.Name, Volume: r.Series.Volume}
	}
	return out
}

// quorumErrorResponse shapes a quorum failure for callers: the shortfall
// plus per-provider diagnostics.
func quorumErrorResponse(qe *domain.QuorumError) map[string]interface{} {
	providerErrors := make(map[string]string, len(qe.Errors))
	for name, err := range qe.Errors {
		providerErrors[name] = err.Error()
	}
	return map[string]interface{}{
		"error":           "insufficient sources responded",
		"succeeded":       qe.Succeeded,
		"required":        qe.Required,
		"provider_errors": providerErrors,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	}
}
