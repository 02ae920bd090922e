//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/graphpad/internal/engine"
	"github.com/inamate/graphpad/internal/interact"
	"github.com/inamate/graphpad/internal/vec"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	graphpad := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	graphpad.Set("loadDiagram", js.FuncOf(loadDiagram))
	graphpad.Set("loadSample", js.FuncOf(loadSample))
	graphpad.Set("resize", js.FuncOf(resize))
	graphpad.Set("setPan", js.FuncOf(setPan))
	graphpad.Set("panBy", js.FuncOf(panBy))
	graphpad.Set("endPan", js.FuncOf(endPan))
	graphpad.Set("beginDrag", js.FuncOf(beginDrag))
	graphpad.Set("updateDrag", js.FuncOf(updateDrag))
	graphpad.Set("endDrag", js.FuncOf(endDrag))
	graphpad.Set("nudge", js.FuncOf(nudge))
	graphpad.Set("setPoint", js.FuncOf(setPoint))
	graphpad.Set("start", js.FuncOf(start))
	graphpad.Set("stop", js.FuncOf(stop))
	graphpad.Set("setTime", js.FuncOf(setTime))
	graphpad.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← engine) ---
	graphpad.Set("render", js.FuncOf(render))
	graphpad.Set("hitTest", js.FuncOf(hitTest))
	graphpad.Set("getBounds", js.FuncOf(getBounds))
	graphpad.Set("getPoints", js.FuncOf(getPoints))
	graphpad.Set("getViewport", js.FuncOf(getViewport))
	graphpad.Set("getDocument", js.FuncOf(getDocument))
	graphpad.Set("getTime", js.FuncOf(getTime))
	graphpad.Set("isRunning", js.FuncOf(isRunning))
	graphpad.Set("getDragging", js.FuncOf(getDragging))

	// Register on global scope
	js.Global().Set("graphpadEngine", graphpad)

	// Signal that WASM is ready
	js.Global().Set("graphpadWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func fail(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func missing(what string) any {
	return js.ValueOf(map[string]any{"error": "missing " + what})
}

func result(err error) any {
	if err != nil {
		return fail(err)
	}
	return ok()
}

func position(p vec.Vector2, err error) any {
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]any{"x": p.X, "y": p.Y})
}

func jsonString(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func loadDiagram(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("diagram JSON")
	}
	return result(eng.LoadDiagram([]byte(args[0].String())))
}

func loadSample(this js.Value, args []js.Value) any {
	return result(eng.LoadSample())
}

func resize(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("width and height")
	}
	return result(eng.Resize(args[0].Float(), args[1].Float()))
}

func setPan(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("pan offset")
	}
	return result(eng.SetPan(vec.V(args[0].Float(), args[1].Float())))
}

func panBy(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("pixel offset")
	}
	return result(eng.PanBy(vec.V(args[0].Float(), args[1].Float())))
}

func endPan(this js.Value, args []js.Value) any {
	eng.EndPan()
	return nil
}

// beginDrag accepts a point ID, or pixel coordinates to hit test.
func beginDrag(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("point")
	}
	id := ""
	if args[0].Type() == js.TypeString {
		id = args[0].String()
	} else if len(args) >= 2 {
		id = eng.HitTest(args[0].Float(), args[1].Float())
	}
	if id == "" {
		return js.ValueOf(map[string]any{"ok": false})
	}
	if err := eng.BeginDrag(id); err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "id": id})
}

func updateDrag(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("pixel movement")
	}
	return position(eng.UpdateDrag(vec.V(args[0].Float(), args[1].Float())))
}

func endDrag(this js.Value, args []js.Value) any {
	return position(eng.EndDrag())
}

func nudge(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("point and key")
	}
	var mods interact.Modifiers
	if len(args) > 2 {
		mods.Fine = args[2].Truthy()
	}
	if len(args) > 3 {
		mods.Coarse = args[3].Truthy()
	}
	return position(eng.Nudge(args[0].String(), args[1].String(), mods))
}

func setPoint(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("point and position")
	}
	return position(eng.SetPoint(args[0].String(), vec.V(args[1].Float(), args[2].Float())))
}

func start(this js.Value, args []js.Value) any {
	eng.Start()
	return nil
}

func stop(this js.Value, args []js.Value) any {
	eng.Stop()
	return nil
}

func setTime(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("time")
	}
	return result(eng.SetTime(args[0].Float()))
}

func tick(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	eng.Tick(args[0].Float())
	return js.ValueOf(eng.Running())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	commands, err := eng.RenderJSON()
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(commands)
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getBounds(this js.Value, args []js.Value) any {
	ids := make([]string, 0, len(args))
	for _, a := range args {
		ids = append(ids, a.String())
	}
	return jsonString(eng.Bounds(ids...))
}

func getPoints(this js.Value, args []js.Value) any {
	return jsonString(eng.Points())
}

func getViewport(this js.Value, args []js.Value) any {
	return jsonString(eng.Viewport())
}

func getDocument(this js.Value, args []js.Value) any {
	doc, err := eng.GetDocument()
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(doc))
}

func getTime(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Time())
}

func isRunning(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Running())
}

func getDragging(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Dragging())
}
