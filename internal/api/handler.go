package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/graphpad/internal/document"
	"github.com/inamate/graphpad/internal/engine"
	"github.com/inamate/graphpad/internal/export"
	"github.com/inamate/graphpad/internal/formula"
	"github.com/inamate/graphpad/internal/interact"
	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

const (
	maxBodySize        = 1 << 20
	maxAnimationPixels = 32 << 20
)

var errBadRequest = errors.New("api: bad request")

type Handler struct {
	store    *Store
	cache    *sample.Cache
	maxDepth int
}

// NewHandler serves the diagrams in store. Sampling requests share cache
// and never refine deeper than maxDepth.
func NewHandler(store *Store, cache *sample.Cache, maxDepth int) *Handler {
	if cache == nil {
		cache = sample.NewCache(0)
	}
	return &Handler{
		store:    store,
		cache:    cache,
		maxDepth: min(max(maxDepth, 1), sample.MaxDepthCeiling),
	}
}

// Routes registers the API under r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/viewport", h.Viewport).Methods("POST")
	r.HandleFunc("/sample", h.Sample).Methods("POST")
	r.HandleFunc("/transform/compose", h.Compose).Methods("POST")

	r.HandleFunc("/diagrams", h.List).Methods("GET")
	r.HandleFunc("/diagrams", h.Create).Methods("POST")
	r.HandleFunc("/diagrams/{id}", h.Get).Methods("GET")
	r.HandleFunc("/diagrams/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/diagrams/{id}/render", h.Render).Methods("GET")
	r.HandleFunc("/diagrams/{id}/png", h.PNG).Methods("GET")
	r.HandleFunc("/diagrams/{id}/gif", h.GIF).Methods("GET")
	r.HandleFunc("/diagrams/{id}/points/{pointId}", h.MovePoint).Methods("PUT")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var doc *document.Diagram
	if len(bytes.TrimSpace(body)) == 0 {
		doc = document.NewSampleDiagram()
	} else if doc, err = document.Parse(body); err != nil {
		handleError(w, err)
		return
	}

	summary, err := h.store.Create(doc)
	if err != nil {
		handleError(w, err)
		return
	}
	slog.Info("diagram created", "id", summary.ID, "points", len(summary.Points))
	writeJSON(w, http.StatusCreated, summary)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	var doc []byte
	err := h.store.With(mux.Vars(r)["id"], func(e *engine.Engine) error {
		var err error
		doc, err = e.GetDocument()
		return err
	})
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(mux.Vars(r)["id"]); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type frameResponse struct {
	Viewport viewport.Viewport    `json:"viewport"`
	Commands []engine.DrawCommand `json:"commands"`
	Points   []engine.PointState  `json:"points"`
	Time     float64              `json:"time"`
}

// Render returns the draw commands of a diagram. Optional width, height
// and time query parameters apply to this request only.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var resp frameResponse
	err := h.store.With(mux.Vars(r)["id"], func(e *engine.Engine) error {
		return withFrameParams(e, r, func() error {
			cmds, err := e.Render()
			if err != nil {
				return err
			}
			if cmds == nil {
				cmds = []engine.DrawCommand{}
			}
			resp = frameResponse{Viewport: e.Viewport(), Commands: cmds, Points: e.Points(), Time: e.Time()}
			return nil
		})
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) PNG(w http.ResponseWriter, r *http.Request) {
	var (
		buf  bytes.Buffer
		name string
	)
	err := h.store.With(mux.Vars(r)["id"], func(e *engine.Engine) error {
		name = e.Diagram().Name
		return withFrameParams(e, r, func() error {
			img, err := rasterise(e)
			if err != nil {
				return err
			}
			return export.WritePNG(&buf, img)
		})
	})
	if err != nil {
		handleError(w, err)
		return
	}
	export.Send(w, name, export.FormatPNG, &buf)
}

// GIF renders an animation by stepping the diagram clock from its current
// time. The stored clock is left as it was.
func (h *Handler) GIF(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	frames, err := intParam(q.Get("frames"), 24)
	if err != nil || frames < 1 || frames > export.MaxFrames {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("frames must be in [1, %d]", export.MaxFrames)})
		return
	}
	fps, err := intParam(q.Get("fps"), export.DefaultFPS)
	if err != nil || fps < 1 || fps > export.MaxFPS {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("fps must be in [1, %d]", export.MaxFPS)})
		return
	}

	var (
		buf  bytes.Buffer
		name string
	)
	err = h.store.With(mux.Vars(r)["id"], func(e *engine.Engine) error {
		name = e.Diagram().Name
		return withFrameParams(e, r, func() error {
			size := e.Viewport().Size
			if size.Width*size.Height*float64(frames) > maxAnimationPixels {
				return fmt.Errorf("%w: animation too large", errBadRequest)
			}
			running := e.Running()
			e.Start()
			defer func() {
				if !running {
					e.Stop()
				}
			}()

			images := make([]*image.RGBA, 0, frames)
			for range frames {
				img, err := rasterise(e)
				if err != nil {
					return err
				}
				images = append(images, img)
				e.Tick(1 / float64(fps))
			}
			return export.EncodeGIF(&buf, images, fps)
		})
	})
	if err != nil {
		handleError(w, err)
		return
	}
	export.Send(w, name, export.FormatGIF, &buf)
}

type movePointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MovePoint sets a point's position in its own coordinates. The point's
// constraint applies as it does for drags.
func (h *Handler) MovePoint(w http.ResponseWriter, r *http.Request) {
	var req movePointRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var pos vec.Vector2
	err := h.store.With(mux.Vars(r)["id"], func(e *engine.Engine) error {
		var err error
		pos, err = e.SetPoint(mux.Vars(r)["pointId"], vec.V(req.X, req.Y))
		return err
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]vec.Vector2{"position": pos})
}

// withFrameParams applies the width, height and time query parameters
// for the duration of fn and restores the previous size and time after.
func withFrameParams(e *engine.Engine, r *http.Request, fn func() error) error {
	q := r.URL.Query()
	size := e.Viewport().Size
	width, err := floatParam(q.Get("width"), size.Width)
	if err != nil {
		return err
	}
	height, err := floatParam(q.Get("height"), size.Height)
	if err != nil {
		return err
	}
	if !(width*height <= export.MaxPixels) {
		return fmt.Errorf("%w: %gx%g exceeds %d pixels", errBadRequest, width, height, export.MaxPixels)
	}
	prevTime := e.Time()
	t, err := floatParam(q.Get("time"), prevTime)
	if err != nil {
		return err
	}

	if width != size.Width || height != size.Height {
		if err := e.Resize(width, height); err != nil {
			return err
		}
		defer e.Resize(size.Width, size.Height)
	}
	if t != prevTime {
		if err := e.SetTime(t); err != nil {
			return err
		}
	}
	defer e.SetTime(prevTime)
	return fn()
}

func rasterise(e *engine.Engine) (*image.RGBA, error) {
	cmds, err := e.Render()
	if err != nil {
		return nil, err
	}
	size := e.Viewport().Size
	return export.Render(cmds, int(size.Width), int(size.Height), e.Diagram().Background)
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errBadRequest, s)
	}
	return v, nil
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrStoreFull):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.Is(err, errBadRequest),
		errors.Is(err, document.ErrInvalid),
		errors.Is(err, formula.ErrCompile),
		errors.Is(err, sample.ErrInvalidOptions),
		errors.Is(err, sample.ErrInvalidDomain),
		errors.Is(err, viewport.ErrInvalidSize),
		errors.Is(err, viewport.ErrEmptyBounds),
		errors.Is(err, engine.ErrTimeOutOfRange),
		errors.Is(err, export.ErrBadSize):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrUnknownPoint):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, vec.ErrNotInvertible),
		errors.Is(err, interact.ErrConstraintViolation),
		errors.Is(err, interact.ErrBusy):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		slog.Error("api error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
