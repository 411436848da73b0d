package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/plots"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/storage"
)

// maxUploadBytes bounds request payloads. A datablock itself can never
// exceed 64 KiB, but JSON plot documents can be larger.
const maxUploadBytes = 16 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "CAT62 ASTERIX API",
	})
}

// readPayload accepts either a multipart upload (first file field) or the
// raw request body.
func readPayload(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("parse multipart: %w", err)
		}
		if r.MultipartForm == nil {
			return nil, fmt.Errorf("no file provided")
		}
		for _, files := range r.MultipartForm.File {
			for _, fh := range files {
				src, err := fh.Open()
				if err != nil {
					return nil, err
				}
				defer src.Close()
				return io.ReadAll(io.LimitReader(src, maxUploadBytes))
			}
		}
		return nil, fmt.Errorf("no file provided")
	}
	return io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	s.logger.WithField("size", len(payload)).Info("Received encode request")

	block, err := s.encoder.EncodeJSON(payload)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, plots.ErrInvalidJSON) {
			status = http.StatusBadRequest
		}
		s.logger.WithError(err).Warn("Encode failed")
		s.archiveOperation("encode", len(payload), 0, "error", err.Error())
		writeError(w, status, err.Error())
		return
	}

	s.archiveOperation("encode", len(block), 0, "ok", "")
	s.logger.WithField("bytes", len(block)).Info("Encode complete")

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="cat62_output.bin"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(block)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	referenceDate := r.URL.Query().Get("reference_date")
	s.logger.WithFields(logrus.Fields{
		"size":           len(payload),
		"reference_date": referenceDate,
	}).Info("Received decode request")

	resp, err := s.decoder.DecodeDatablock(payload, referenceDate)
	if err != nil {
		s.logger.WithError(err).Warn("Decode failed")
		s.archiveOperation("decode", len(payload), 0, "error", err.Error())
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.rememberTracks(resp.Records)
	s.publishTracks(resp.Records)
	s.archiveOperation("decode", len(payload), resp.Count, "ok", "")
	s.logger.WithField("records", resp.Count).Info("Decode complete")

	writeJSON(w, http.StatusOK, resp)
}

// rememberTracks refreshes the recent-tracks cache with the latest snapshot
// of every decoded track that carries a track number.
func (s *Server) rememberTracks(records []plots.TrackRecord) {
	for _, rec := range records {
		if rec.TrackNumber == nil {
			continue
		}
		s.tracks.SetDefault(strconv.Itoa(*rec.TrackNumber), rec)
	}
}

func (s *Server) publishTracks(records []plots.TrackRecord) {
	if s.publisher == nil {
		return
	}
	for _, rec := range records {
		if err := s.publisher.PublishRecord(rec); err != nil {
			s.logger.WithError(err).Warn("Failed to publish decoded track")
		}
	}
}

func (s *Server) archiveOperation(direction string, size, count int, status, detail string) {
	if s.archive == nil {
		return
	}
	_, err := s.archive.InsertOperation(storage.Operation{
		Timestamp:   time.Now().UTC(),
		Direction:   direction,
		SizeBytes:   size,
		RecordCount: count,
		Status:      status,
		Detail:      detail,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Failed to archive operation")
	}
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	items := s.tracks.Items()
	records := make([]plots.TrackRecord, 0, len(items))
	for _, item := range items {
		if rec, ok := item.Object.(plots.TrackRecord); ok {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return *records[i].TrackNumber < *records[j].TrackNumber
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(records),
		"tracks": records,
	})
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "operation archive is not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ops, err := s.archive.RecentOperations(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(ops),
		"operations": ops,
	})
}
