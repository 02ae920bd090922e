package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// Export formats.
const (
	FormatPNG = "png"
	FormatGIF = "gif"
)

const (
	DefaultFPS = 12
	MaxFPS     = 60
	MaxFrames  = 240
)

var contentTypes = map[string]string{
	FormatPNG: "image/png",
	FormatGIF: "image/gif",
}

// ContentType returns the MIME type of format, or "" for an unknown one.
func ContentType(format string) string { return contentTypes[format] }

// EncodeGIF writes frames as a looping animation. Frames are dithered
// onto the Plan 9 palette.
func EncodeGIF(w io.Writer, frames []*image.RGBA, fps int) error {
	if len(frames) == 0 {
		return fmt.Errorf("export: no frames")
	}
	if fps <= 0 || fps > MaxFPS {
		fps = DefaultFPS
	}
	delay := 100 / fps

	anim := &gif.GIF{}
	for _, f := range frames {
		p := image.NewPaletted(f.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(p, f.Bounds(), f, image.Point{})
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, anim)
}

// SanitizeName keeps letters, digits, '-' and '_' so name is safe inside
// a Content-Disposition header.
func SanitizeName(name string) string {
	if name == "" {
		return "diagram"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}

// Send streams an encoded export back as a download.
func Send(w http.ResponseWriter, name, format string, data *bytes.Buffer) {
	size := data.Len()
	w.Header().Set("Content-Type", ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, SanitizeName(name), format))
	w.Header().Set("Content-Length", strconv.Itoa(size))
	if _, err := io.Copy(w, data); err != nil {
		slog.Warn("export write failed", "format", format, "error", err)
		return
	}

	slog.Info("export complete", "format", format, "size", size)
}
