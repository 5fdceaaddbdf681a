package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/sherine-k/pickups/pkg/batch"
	"github.com/sherine-k/pickups/pkg/dispatch"
	"github.com/sherine-k/pickups/pkg/jobs"
	"github.com/sherine-k/pickups/pkg/tally"
)

type assignmentView struct {
	PickupDate string `json:"pickupDate"`
	Location   string `json:"location"`
	PickupTime string `json:"pickupTime"`
	Driver     string `json:"driver"`
}

type batchView struct {
	BatchID     string           `json:"batchId"`
	TargetDate  string           `json:"targetDate"`
	Strategy    string           `json:"strategy"`
	PoolSize    int              `json:"poolSize"`
	Assignments []assignmentView `json:"assignments"`
	Counts      tally.Counts     `json:"counts"`
	Unassigned  int              `json:"unassigned"`
	EmptyRoster bool             `json:"emptyRoster"`
}

func newBatchView(res *batch.Result) batchView {
	view := batchView{
		BatchID:     res.ID,
		TargetDate:  res.TargetDate.Format(time.DateOnly),
		Strategy:    res.Strategy,
		PoolSize:    res.PoolSize,
		Assignments: make([]assignmentView, len(res.Assignments)),
		Counts:      res.Counts,
		Unassigned:  res.Unassigned,
		EmptyRoster: res.EmptyRoster,
	}
	for i, a := range res.Assignments {
		view.Assignments[i] = assignmentView{
			PickupDate: a.PickupDate.Format(time.DateOnly),
			Location:   a.Location,
			PickupTime: a.PickupTime.Format(time.TimeOnly),
			Driver:     a.Driver,
		}
	}
	return view
}

// CreateAssignments reads an uploaded job table and assigns the jobs of the
// requested date. Every request gets its own pool and tracker.
func (h *Handler) CreateAssignments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.Server.MaxUploadBytes); err != nil {
		h.badRequest(w, r, err)
		return
	}

	req := struct {
		TargetDate string `validate:"required,datetime=2006-01-02"`
		Strategy   string `validate:"omitempty,oneof=first-fit least-recent least-loaded"`
	}{
		TargetDate: r.FormValue("target_date"),
		Strategy:   r.FormValue("strategy"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	targetDate, err := time.ParseInLocation(time.DateOnly, req.TargetDate, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "a job file is required")
		return
	}
	defer file.Close()

	format, err := jobs.FormatFromName(header.Filename)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	parsed, err := jobs.Read(file, format, h.readerOptions())
	if err != nil {
		h.runner.Reject()
		var malformed *dispatch.MalformedJobError
		if errors.As(err, &malformed) {
			h.unprocessable(w, r, err)
			return
		}
		h.badRequest(w, r, err)
		return
	}

	res, err := h.runner.Run(batch.Request{
		Jobs:       parsed,
		TargetDate: targetDate,
		Strategy:   req.Strategy,
	})
	if err != nil {
		var malformed *dispatch.MalformedJobError
		if errors.As(err, &malformed) {
			h.unprocessable(w, r, err)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	msg := "jobs assigned"
	if res.EmptyRoster {
		msg = "no drivers in pool, every job left unassigned"
	}
	h.successResponse(w, r, msg, newBatchView(res))
}

// Visualize renders a driver count mapping as a bar chart
func (h *Handler) Visualize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Counts tally.Counts `json:"counts" validate:"required,dive,keys,required,endkeys,min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	out := h.charts.GenerateCountChart(req.Counts)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out)); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
