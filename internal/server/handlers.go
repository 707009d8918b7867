package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/normalize"
	"github.com/openshelf/metadata-service/internal/providers"
)

// maxRequestBodySize bounds request bodies at 1 MB. Query length limits
// live in the request structs' validate tags.
const maxRequestBodySize = 1 << 20

// titleSearchRequest is the JSON request body for a title search.
type titleSearchRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=500"`
	ExactMatch bool   `json:"exact_match,omitempty"`
	Fuzzy      bool   `json:"fuzzy,omitempty"`
}

// multiSearchRequest is the JSON request body for a multi-criteria search.
// At least one criterion must be set.
type multiSearchRequest struct {
	Title     string `json:"title,omitempty" validate:"omitempty,max=500"`
	Creator   string `json:"creator,omitempty" validate:"omitempty,max=200"`
	ISBN      string `json:"isbn,omitempty" validate:"omitempty,max=20"`
	Publisher string `json:"publisher,omitempty" validate:"omitempty,max=200"`
	Year      int    `json:"year,omitempty" validate:"omitempty,min=0,max=3000"`
}

// searchByISBN handles GET /api/v1/search/isbn/{isbn}.
func (s *Server) searchByISBN(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "isbn")
	isbn := normalize.CleanISBN(raw)
	if !normalize.ValidISBN10(isbn) && !normalize.ValidISBN13(isbn) {
		writeError(w, http.StatusBadRequest, "invalid ISBN: failed checksum validation")
		return
	}

	result, err := s.aggregator.SearchByISBN(r.Context(), isbn)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toSearchResponse(result))
}

// searchByTitle handles POST /api/v1/search/title.
func (s *Server) searchByTitle(w http.ResponseWriter, r *http.Request) {
	var req titleSearchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	result, err := s.aggregator.SearchByTitle(r.Context(), providers.TitleQuery{
		Title:      req.Title,
		ExactMatch: req.ExactMatch,
		Fuzzy:      req.Fuzzy,
	})
	if err != nil {
		s.writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toSearchResponse(result))
}

// searchMultiCriteria handles POST /api/v1/search.
func (s *Server) searchMultiCriteria(w http.ResponseWriter, r *http.Request) {
	var req multiSearchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Creator = strings.TrimSpace(req.Creator)
	req.Publisher = strings.TrimSpace(req.Publisher)
	if req.Title == "" && req.Creator == "" && req.ISBN == "" && req.Publisher == "" && req.Year == 0 {
		writeError(w, http.StatusBadRequest, "at least one search criterion is required")
		return
	}
	if req.ISBN != "" {
		cleaned := normalize.CleanISBN(req.ISBN)
		if !normalize.ValidISBN10(cleaned) && !normalize.ValidISBN13(cleaned) {
			writeError(w, http.StatusBadRequest, "invalid ISBN: failed checksum validation")
			return
		}
		req.ISBN = cleaned
	}

	result, err := s.aggregator.SearchMultiCriteria(r.Context(), providers.MultiQuery{
		Title:     req.Title,
		Creator:   req.Creator,
		ISBN:      req.ISBN,
		Publisher: req.Publisher,
		Year:      req.Year,
	})
	if err != nil {
		s.writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toSearchResponse(result))
}

// decodeAndValidate reads the bounded request body into dst and runs
// struct validation. It writes the error response itself and reports
// whether the request can proceed.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeSearchError maps aggregation errors to HTTP status codes.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	var qe *domain.QuorumError
	switch {
	case errors.As(err, &qe):
		writeJSON(w, http.StatusServiceUnavailable, quorumErrorResponse(qe))
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
	default:
		s.logger.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
