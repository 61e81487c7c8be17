package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/ivlev/animchat/internal/director"
	"github.com/ivlev/animchat/internal/engine"
	"github.com/ivlev/animchat/internal/session"
	"github.com/ivlev/animchat/internal/source"
)

const maxUploadBytes = 32 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Post("/image", imageHandler(cfg))
	r.Post("/chat", chatHandler(cfg))
	r.Get("/messages", messagesHandler(cfg))
	r.Delete("/messages", resetHandler(cfg))
	r.Get("/plan", planHandler(cfg))
	r.Post("/render", renderHandler(cfg))
	r.Route("/preview", func(r chi.Router) {
		r.Get("/", previewHandler(cfg))
		r.Get("/qr", previewQRHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Version:   cfg.Version,
			UptimeS:   int64(time.Since(cfg.StartTime).Seconds()),
			State:     cfg.Session.State().String(),
			Generator: cfg.Generator,
		})
	}
}

func imageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("image")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "multipart field 'image' is required", "INVALID_REQUEST")
			return
		}
		defer file.Close()

		path, err := cfg.Session.SaveImage(file, header.Filename)
		if err != nil {
			if errors.Is(err, source.ErrUnsupportedFormat) {
				WriteError(w, http.StatusUnsupportedMediaType, err.Error(), "UNSUPPORTED_FORMAT")
				return
			}
			cfg.Logger.Sugar().Errorw("failed to store upload", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to store image", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ImageResponse{
			Filename:  filepath.Base(path),
			CanRender: cfg.Session.CanRender(),
		})
	}
}

func chatHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
			return
		}

		res, err := cfg.Session.Submit(r.Context(), req.Prompt)
		if err != nil {
			if errors.Is(err, session.ErrEmptyPrompt) {
				WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
				return
			}
			cfg.Logger.Sugar().Errorw("chat turn failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "chat turn failed", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, TurnToResponse(res))
	}
}

func messagesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := cfg.Session.Messages(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list messages", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, MessagesResponse{Messages: msgs})
	}
}

func resetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Session.Reset(r.Context()); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to reset chat", "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// planHandler offers the current plan as animation_plan.json.
func planHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan := cfg.Session.Plan()
		if plan.Empty() {
			WriteError(w, http.StatusNotFound, "no plan yet", "NOT_FOUND")
			return
		}
		data, err := director.MarshalPlanJSON(plan)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to encode plan", "INTERNAL_ERROR")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="animation_plan.json"`)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func renderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		art, err := cfg.Session.Render(r.Context())
		switch {
		case errors.Is(err, session.ErrRenderUnavailable):
			WriteError(w, http.StatusConflict, err.Error(), "RENDER_UNAVAILABLE")
			return
		case errors.Is(err, engine.ErrRenderFailure):
			WriteError(w, http.StatusInternalServerError, err.Error(), "RENDER_FAILED")
			return
		case err != nil:
			WriteError(w, http.StatusInternalServerError, "render failed", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, RenderResponse{
			PreviewURL: "/preview",
			QRURL:      "/preview/qr",
			Duration:   art.Duration,
			ElapsedMS:  art.Elapsed.Milliseconds(),
			Plan:       cfg.Session.Plan(),
		})
	}
}

func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		art := cfg.Session.Artifact()
		if art == nil {
			WriteError(w, http.StatusNotFound, "nothing rendered yet", "NOT_FOUND")
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		http.ServeFile(w, r, art.Path)
	}
}

func previewQRHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Session.Artifact() == nil {
			WriteError(w, http.StatusNotFound, "nothing rendered yet", "NOT_FOUND")
			return
		}
		png, err := qrcode.Encode(previewURL(cfg, r), qrcode.Medium, 256)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to encode QR code", "INTERNAL_ERROR")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}

func previewURL(cfg ServerConfig, r *http.Request) string {
	base := strings.TrimSuffix(cfg.PublicURL, "/")
	if base == "" {
		base = "http://" + r.Host
	}
	return base + "/preview"
}
