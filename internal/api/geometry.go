package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/inamate/graphpad/internal/formula"
	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/transform"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

// Sample kinds.
const (
	KindOfX        = "ofX"
	KindOfY        = "ofY"
	KindParametric = "parametric"
)

type viewportRequest struct {
	ViewBox viewport.ViewBox `json:"viewBox"`
	Size    viewport.Size    `json:"size"`
	Pan     vec.Vector2      `json:"pan"`
	Policy  viewport.Policy  `json:"policy"`
}

func (req *viewportRequest) compute() (viewport.Viewport, error) {
	box := req.ViewBox
	if box.X == [2]float64{} && box.Y == [2]float64{} {
		box = viewport.DefaultViewBox()
	}
	policy := req.Policy
	if policy == "" {
		policy = viewport.PolicyContain
	}
	return viewport.Compute(box, req.Size, req.Pan, policy)
}

func (h *Handler) Viewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if !decode(w, r, &req) {
		return
	}
	vp, err := req.compute()
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vp)
}

type sampleRequest struct {
	Kind string `json:"kind"`
	// Expr is the function for ofX and ofY.
	Expr string `json:"expr"`
	// X and Y are the coordinate functions of a parametric curve over T.
	X string     `json:"x"`
	Y string     `json:"y"`
	T [2]float64 `json:"t"`

	Points map[string]vec.Vector2 `json:"points"`
	Time   float64                `json:"time"`

	// Viewport drives the pane layout of ofX and ofY and the default
	// error budget of every kind.
	Viewport *viewportRequest `json:"viewport"`

	MinDepth       int     `json:"minDepth"`
	MaxDepth       int     `json:"maxDepth"`
	ErrorThreshold float64 `json:"errorThreshold"`
}

// Sample samples an expression and returns the sampled runs. Results are
// shared through the sample cache.
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if !decode(w, r, &req) {
		return
	}

	names := make([]string, 0, len(req.Points))
	for name := range req.Points {
		names = append(names, name)
	}
	slices.Sort(names)
	env := formula.NewEnv().Set(formula.VarTime, req.Time)
	for _, name := range names {
		env.SetPoint(name, req.Points[name])
	}

	opts := h.samplingOptions(req)
	var vp *viewport.Viewport
	if req.Viewport != nil {
		v, err := req.Viewport.compute()
		if err != nil {
			handleError(w, err)
			return
		}
		vp = &v
		if req.ErrorThreshold == 0 {
			opts.ErrorThreshold = v.ErrorThreshold()
		}
	}

	var (
		compute func() (sample.Path, error)
		domain  [2]float64
		id      string
	)
	switch req.Kind {
	case KindOfX, KindOfY:
		if vp == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "viewport is required for " + req.Kind})
			return
		}
		e, err := formula.Compile(req.Expr, names...)
		if err != nil {
			handleError(w, err)
			return
		}
		id = req.Kind + ":" + req.Expr
		if req.Kind == KindOfX {
			domain = [2]float64{vp.XPaneRange.Lo, vp.XPaneRange.Hi}
			compute = func() (sample.Path, error) { return sample.OfX(formula.OfX(e, env), *vp, opts) }
		} else {
			domain = [2]float64{vp.YPaneRange.Lo, vp.YPaneRange.Hi}
			compute = func() (sample.Path, error) { return sample.OfY(formula.OfY(e, env), *vp, opts) }
		}
		opts.Clip = &viewport.Bounds{XMin: vp.XPaneRange.Lo, XMax: vp.XPaneRange.Hi, YMin: vp.YPaneRange.Lo, YMax: vp.YPaneRange.Hi}

	case KindParametric:
		x, err := formula.Compile(req.X, names...)
		if err != nil {
			handleError(w, err)
			return
		}
		y, err := formula.Compile(req.Y, names...)
		if err != nil {
			handleError(w, err)
			return
		}
		id = req.Kind + ":" + req.X + ";" + req.Y
		domain = req.T
		compute = func() (sample.Path, error) { return sample.Parametric(formula.Parametric(x, y, env), domain, opts) }

	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown kind %q", req.Kind)})
		return
	}

	path, err := h.cache.Get(sample.Key(id+"@"+envKey(names, req), domain, opts), compute)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

// samplingOptions fills the default depths and holds MaxDepth to the
// configured cap.
func (h *Handler) samplingOptions(req sampleRequest) sample.Options {
	opts := sample.Options{
		MinDepth:       req.MinDepth,
		MaxDepth:       req.MaxDepth,
		ErrorThreshold: req.ErrorThreshold,
	}
	if opts.MinDepth == 0 && opts.MaxDepth == 0 {
		opts.MinDepth = sample.DefaultMinDepth
		opts.MaxDepth = sample.DefaultMaxDepth
	}
	if opts.MaxDepth > h.maxDepth {
		opts.MaxDepth = h.maxDepth
		opts.MinDepth = min(opts.MinDepth, opts.MaxDepth)
	}
	if opts.ErrorThreshold == 0 {
		opts.ErrorThreshold = sample.DefaultErrorThreshold
	}
	return opts
}

func envKey(names []string, req sampleRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "time=%g", req.Time)
	for _, name := range names {
		p := req.Points[name]
		fmt.Fprintf(&b, ",%s=%g:%g", name, p.X, p.Y)
	}
	return b.String()
}

type composeRequest struct {
	Parent *vec.Matrix     `json:"parent"`
	Local  transform.Local `json:"local"`
	Invert bool            `json:"invert"`
}

type composeResponse struct {
	Local   vec.Matrix  `json:"local"`
	User    vec.Matrix  `json:"user"`
	Inverse *vec.Matrix `json:"inverse,omitempty"`
}

// Compose builds a local transform and nests it in a parent user
// transform, identity when omitted.
func (h *Handler) Compose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !decode(w, r, &req) {
		return
	}
	parent := vec.Identity()
	if req.Parent != nil {
		parent = *req.Parent
	}
	local := req.Local.Build()
	resp := composeResponse{Local: local, User: transform.Compose(parent, local)}
	if req.Invert {
		inv, err := vec.Invert(resp.User)
		if err != nil {
			handleError(w, err)
			return
		}
		resp.Inverse = &inv
	}
	writeJSON(w, http.StatusOK, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
