package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/vigcrack/internal/pipeline"
	"github.com/dgallion1/vigcrack/internal/report"
	"github.com/dgallion1/vigcrack/internal/vigenere"
)

type crackRequest struct {
	Text      string `json:"text"`
	MinRepeat int    `json:"min_repeat"`
	TopShifts int    `json:"top_shifts"`
	KeyLength int    `json:"key_length"`
	Key       string `json:"key"`
}

func (req crackRequest) validate() error {
	switch {
	case req.MinRepeat < 0:
		return fmt.Errorf("min_repeat must be >= 0")
	case req.TopShifts < 0:
		return fmt.Errorf("top_shifts must be >= 0")
	case req.KeyLength < 0:
		return fmt.Errorf("key_length must be >= 0")
	}
	return nil
}

func (s *Server) handleCrack(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxTextBytes+4096) // room for the JSON envelope

	var req crackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxTextBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(req.Text)) > s.cfg.MaxTextBytes {
		jsonError(w, fmt.Sprintf("text exceeds max size (%d bytes)", s.cfg.MaxTextBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if err := req.validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := pipeline.JobOptions{
		MinRepeat: req.MinRepeat,
		TopShifts: req.TopShifts,
		KeyLength: req.KeyLength,
		Key:       req.Key,
	}
	res, err := s.orchestrator.Analyze(r.Context(), opts, req.Text)
	if err != nil {
		if vigenere.IsAnalysisError(err) {
			analysisError(w, err)
			return
		}
		s.log.Error("analysis failed", "error", err)
		jsonError(w, "analysis failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		report.Write(w, res)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// analysisError writes a 422 carrying the stable error code.
func analysisError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"code":  vigenere.Code(err),
	})
}
