package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/vigcrack/internal/parser"
	"github.com/dgallion1/vigcrack/internal/pipeline"
)

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	mode, opts, err := jobOptionsFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	entry, code, err := s.submit(filename, r.FormValue("title"), mode, opts, data)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(entry)
}

func (s *Server) handleBatchJobs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	mode, opts, err := jobOptionsFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		entry, _, err := s.submit(filename, "", mode, opts, data)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}
		results = append(results, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

// submit queues a job, or points at an existing one for identical content
// and options. It returns the response entry and its HTTP status.
func (s *Server) submit(filename, title string, mode pipeline.Mode, opts pipeline.JobOptions, data []byte) (map[string]any, int, error) {
	job := pipeline.NewJob(filename, title, mode, opts, data)

	if existing := s.orchestrator.FindDuplicate(job.ContentHash); existing != nil {
		snap := existing.Snapshot()
		s.log.Info("duplicate upload, reusing job", "job_id", snap.ID, "filename", filename)
		return map[string]any{
			"filename": filename,
			"job_id":   snap.ID,
			"status":   snap.Status,
			"reused":   true,
			"poll_url": pollURL(snap.ID),
		}, http.StatusOK, nil
	}

	if err := s.orchestrator.Submit(job); err != nil {
		return nil, http.StatusServiceUnavailable, err
	}

	return map[string]any{
		"filename": filename,
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"reused":   false,
		"poll_url": pollURL(job.ID),
	}, http.StatusAccepted, nil
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	if !snap.Status.Terminal() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error":  "job not finished",
			"status": snap.Status,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id": snap.ID,
		"status": snap.Status,
		"errors": snap.Progress.Errors,
		"result": job.Result(),
	})
}

// jobOptionsFromForm reads the mode and analysis overrides from form fields.
func jobOptionsFromForm(r *http.Request) (pipeline.Mode, pipeline.JobOptions, error) {
	mode, err := pipeline.ParseMode(r.FormValue("mode"))
	if err != nil {
		return "", pipeline.JobOptions{}, err
	}

	var opts pipeline.JobOptions
	fields := []struct {
		name string
		dst  *int
	}{
		{"min_repeat", &opts.MinRepeat},
		{"top_shifts", &opts.TopShifts},
		{"key_length", &opts.KeyLength},
	}
	for _, f := range fields {
		v := strings.TrimSpace(r.FormValue(f.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", pipeline.JobOptions{}, fmt.Errorf("%s must be a non-negative integer", f.name)
		}
		*f.dst = n
	}
	opts.Key = strings.TrimSpace(r.FormValue("key"))
	return mode, opts, nil
}

func pollURL(jobID string) string {
	return fmt.Sprintf("/api/jobs/%s/status", jobID)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
