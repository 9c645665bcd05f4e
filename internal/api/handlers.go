package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trustlens/adapters/analysis/crossval"
	"trustlens/adapters/excel"
	"trustlens/adapters/segmentdir"
	"trustlens/app"
	"trustlens/domain/core"
	"trustlens/domain/evidence"
	"trustlens/internal/report"
	"trustlens/ports"
)

// evaluateRequest is the JSON body for an evidence evaluation.
type evaluateRequest struct {
	CaptureID string    `json:"capture_id"`
	SessionID string    `json:"session_id"`
	MediaType string    `json:"media_type"`
	MediaPath string    `json:"media_path"`
	DepthPath string    `json:"depth_path,omitempty"`
	// Methods carries detector outputs declared by the external
	// detector-invocation layer. Scores are nullable: null means the
	// detector reported nothing.
	Methods map[string]methodInput `json:"methods,omitempty"`
	// FrameWindows carries sampled per-method scores for video captures.
	FrameWindows []frameWindow `json:"frame_windows,omitempty"`
}

type methodInput struct {
	Score  *float64 `json:"score"`
	Status string   `json:"status"`
}

type frameWindow struct {
	FrameIndex int                `json:"frame_index"`
	Scores     map[string]float64 `json:"scores"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var body evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	captureID, err := core.ParseCaptureID(body.CaptureID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mediaType := evidence.MediaPhoto
	if body.MediaType == string(evidence.MediaVideo) {
		mediaType = evidence.MediaVideo
	}

	var methods map[evidence.DetectionMethod]evidence.MethodResult
	if len(body.Methods) > 0 {
		methods = make(map[evidence.DetectionMethod]evidence.MethodResult, len(body.Methods))
		for name, in := range body.Methods {
			m := evidence.DetectionMethod(name)
			if !m.IsValid() {
				continue
			}
			score := evidence.MissingScore()
			if in.Score != nil {
				score = evidence.NewScore(*in.Score)
			}
			methods[m] = evidence.MethodResult{
				Available: !score.IsMissing(),
				Score:     score,
				Status:    evidence.MethodStatus(in.Status),
			}
		}
	}

	windows := make([]crossval.FrameWindow, 0, len(body.FrameWindows))
	for _, fw := range body.FrameWindows {
		scores := make(map[evidence.DetectionMethod]float64, len(fw.Scores))
		for name, v := range fw.Scores {
			m := evidence.DetectionMethod(name)
			if m.IsValid() {
				scores[m] = v
			}
		}
		windows = append(windows, crossval.FrameWindow{FrameIndex: fw.FrameIndex, Scores: scores})
	}

	pkg, err := s.service.Evaluate(r.Context(), app.EvaluateRequest{
		CaptureID: captureID,
		SessionID: core.SessionID(body.SessionID),
		MediaType: mediaType,
		Input: ports.CaptureInput{
			CaptureID:    captureID,
			MediaType:    mediaType,
			MediaPath:    body.MediaPath,
			DepthMapPath: body.DepthPath,
		},
		Methods:      methods,
		FrameWindows: windows,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleGetEvidence(w http.ResponseWriter, r *http.Request) {
	captureID, err := core.ParseCaptureID(chi.URLParam(r, "captureId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg, err := s.repo.GetEvidence(r.Context(), captureID)
	if err != nil {
		if core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, "evidence package not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	captureID, err := core.ParseCaptureID(chi.URLParam(r, "captureId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg, err := s.repo.GetEvidence(r.Context(), captureID)
	if err != nil {
		if core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, "evidence package not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.RenderHTML(pkg))
}

func (s *Server) handleExportEvidence(w http.ResponseWriter, r *http.Request) {
	captureID, err := core.ParseCaptureID(chi.URLParam(r, "captureId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg, err := s.repo.GetEvidence(r.Context(), captureID)
	if err != nil {
		if core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, "evidence package not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="evidence-`+captureID.String()+`.xlsx"`)
	if err := excel.NewReportExporter().WriteTo(pkg, w); err != nil {
		// Headers are already out; all we can do is log via the middleware.
		return
	}
}

func (s *Server) handleListSessionEvidence(w http.ResponseWriter, r *http.Request) {
	sessionID, err := core.ParseSessionID(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, offset := paginationParams(r)
	packages, err := s.repo.ListEvidenceBySession(r.Context(), sessionID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if packages == nil {
		packages = []*evidence.EvidencePackage{}
	}

	writeJSON(w, http.StatusOK, packages)
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// chainVerifyRequest describes a hash-chain verification over segments
// already staged on local storage.
type chainVerifyRequest struct {
	CaptureID   string `json:"capture_id"`
	Salt        string `json:"salt"`
	SegmentsDir string `json:"segments_dir"`
}

func (s *Server) handleVerifyChain(w http.ResponseWriter, r *http.Request) {
	var body chainVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	captureID, err := core.ParseCaptureID(body.CaptureID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := segmentdir.Open(body.SegmentsDir)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.service.VerifyChain(r.Context(), captureID, []byte(body.Salt), src)
	if err != nil {
		// Cancellation still yields a meaningful partial state.
		writeJSON(w, http.StatusOK, state)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
