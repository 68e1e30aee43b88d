package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "browserd",
		"version": "1.0",
		"endpoints": map[string]string{
			"GET /status":            "Get browser status",
			"POST /start":            "Start browser session",
			"POST /stop":             "Stop browser session",
			"POST /goto":             `Navigate to URL (body: {"url": "..."})`,
			"GET /screenshot":        "Get screenshot as PNG",
			"GET /screenshot/base64": "Get screenshot as base64 JSON",
			"GET /source":            "Get current page HTML",
			"GET /elements/links":    "List all links",
			"GET /elements/forms":    "List all form fields",
			"GET /elements/buttons":  "List all buttons",
			"POST /click":            `Click element (body: {"selector": "...", "type": "css"})`,
			"POST /fill":             `Fill form field (body: {"selector": "...", "value": "...", "type": "css"})`,
			"POST /execute":          `Execute JavaScript (body: {"script": "..."})`,
			"POST /back":             "Go back",
			"POST /forward":          "Go forward",
			"POST /refresh":          "Refresh page",
		},
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.holder.Running() {
		writeJSON(w, http.StatusOK, StatusResponse{Status: "stopped"})
		return
	}
	st, err := s.holder.Status(r.Context())
	if err != nil {
		// The probe found the browser dead and dropped the handle.
		writeJSON(w, http.StatusOK, ErrorResponse{
			Status:  statusError,
			Message: "browser session died",
		})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:     "running",
		URL:        st.URL,
		Title:      st.Title,
		WindowSize: st.Viewport,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	created, err := s.holder.Start(r.Context())
	if err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	msg := "browser started"
	if !created {
		msg = "browser already running"
	}
	writeJSON(w, http.StatusOK, MessageResponse{Status: statusSuccess, Message: msg})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	stopped, err := s.holder.Stop()
	if err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	msg := "browser stopped"
	if !stopped {
		msg = "browser was not running"
	}
	writeJSON(w, http.StatusOK, MessageResponse{Status: statusSuccess, Message: msg})
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	var req GotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		writeErrorMessage(w, http.StatusBadRequest, "url required")
		return
	}

	if err := s.holder.Navigate(r.Context(), req.URL); err != nil {
		writeError(w, err)
		return
	}
	s.settle(r, true)

	loc, _ := s.holder.Location(r.Context())
	writeJSON(w, http.StatusOK, NavigateResponse{
		Status: statusSuccess,
		URL:    loc.URL,
		Title:  loc.Title,
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.historyOp(w, r, s.holder.Back)
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	s.historyOp(w, r, s.holder.Forward)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.historyOp(w, r, s.holder.Reload)
}

func (s *Server) historyOp(w http.ResponseWriter, r *http.Request, op func(context.Context) error) {
	if err := op(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.settle(r, true)

	loc, _ := s.holder.Location(r.Context())
	writeJSON(w, http.StatusOK, NavigateResponse{Status: statusSuccess, URL: loc.URL})
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	shot, err := s.holder.Screenshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	s.settle(r, false)

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(shot.Data)
}

func (s *Server) handleScreenshotBase64(w http.ResponseWriter, r *http.Request) {
	shot, err := s.holder.Screenshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	s.settle(r, false)

	writeJSON(w, http.StatusOK, ScreenshotResponse{
		Status:     statusSuccess,
		Screenshot: base64.StdEncoding.EncodeToString(shot.Data),
		URL:        shot.URL,
		Title:      shot.Title,
	})
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	src, err := s.holder.Source(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	loc, _ := s.holder.Location(r.Context())
	writeJSON(w, http.StatusOK, SourceResponse{
		Status: statusSuccess,
		URL:    loc.URL,
		Source: src,
	})
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.holder.Links(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{
		Status: statusSuccess,
		Count:  len(links),
		Links:  links,
	})
}

func (s *Server) handleForms(w http.ResponseWriter, r *http.Request) {
	fields, err := s.holder.FormFields(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FormsResponse{
		Status: statusSuccess,
		Count:  len(fields),
		Fields: fields,
	})
}

func (s *Server) handleButtons(w http.ResponseWriter, r *http.Request) {
	buttons, err := s.holder.Buttons(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ButtonsResponse{
		Status:  statusSuccess,
		Count:   len(buttons),
		Buttons: buttons,
	})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Selector == "" {
		writeErrorMessage(w, http.StatusBadRequest, "selector required")
		return
	}

	if err := s.holder.Click(r.Context(), selectorFromWire(req.Selector, req.Type)); err != nil {
		writeError(w, err)
		return
	}
	s.settle(r, true)

	loc, _ := s.holder.Location(r.Context())
	writeJSON(w, http.StatusOK, ClickResponse{
		Status:     statusSuccess,
		Message:    "element clicked",
		CurrentURL: loc.URL,
	})
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	var req FillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Selector == "" {
		writeErrorMessage(w, http.StatusBadRequest, "selector required")
		return
	}

	clear := true
	if req.Clear != nil {
		clear = *req.Clear
	}

	if err := s.holder.Fill(r.Context(), selectorFromWire(req.Selector, req.Type), req.Value, clear); err != nil {
		writeError(w, err)
		return
	}
	s.settle(r, false)

	writeJSON(w, http.StatusOK, MessageResponse{Status: statusSuccess, Message: "field filled"})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Script == "" {
		writeErrorMessage(w, http.StatusBadRequest, "script required")
		return
	}

	result, err := s.holder.Evaluate(r.Context(), req.Script)
	if err != nil {
		writeError(w, err)
		return
	}
	s.settle(r, false)

	writeJSON(w, http.StatusOK, ExecuteResponse{Status: statusSuccess, Result: result})
}

// settle blocks before the response is written: the wait query
// parameter (seconds) when present, otherwise the configured settle
// delay for navigation-style endpoints. The wait is capped.
func (s *Server) settle(r *http.Request, useDefault bool) {
	delay := time.Duration(0)
	if useDefault {
		delay = s.cfg.SettleDelay
	}
	if raw := r.URL.Query().Get("wait"); raw != "" {
		secs, err := strconv.ParseFloat(raw, 64)
		if err == nil && secs > 0 {
			delay = time.Duration(secs * float64(time.Second))
		}
	}
	if delay <= 0 {
		return
	}
	if s.cfg.MaxWait > 0 && delay > s.cfg.MaxWait {
		delay = s.cfg.MaxWait
	}
	time.Sleep(delay)
}
