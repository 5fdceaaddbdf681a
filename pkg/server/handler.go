// Package server exposes assignment batches over HTTP.
package server

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sherine-k/pickups/pkg/batch"
	"github.com/sherine-k/pickups/pkg/chart"
	"github.com/sherine-k/pickups/pkg/config"
	"github.com/sherine-k/pickups/pkg/jobs"
)

type Handler struct {
	validate   *validator.Validate
	translator ut.Translator
	config     *config.Config
	runner     *batch.Runner
	charts     *chart.Generator
	gatherer   prometheus.Gatherer
	log        zerolog.Logger
	location   *time.Location

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, runner *batch.Runner, gatherer prometheus.Gatherer, log zerolog.Logger) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		translator: trans,
		config:     cfg,
		runner:     runner,
		charts:     chart.NewGenerator(),
		gatherer:   gatherer,
		log:        log,
		location:   time.UTC,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Health)
	h.Mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	h.Mux.Post("/assignments", h.CreateAssignments)
	h.Mux.Post("/visualize", h.Visualize)
}

func (h *Handler) readerOptions() jobs.Options {
	opts := jobs.OptionsFromConfig(h.config)
	opts.Location = h.location
	return opts
}
