package batch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format renders the result as "text" or "json".
func (r *Result) Format(format string) (string, error) {
	switch format {
	case "json":
		return r.formatJSON()
	case "text", "":
		return r.formatText(), nil
	}
	return "", fmt.Errorf("unsupported format: %s", format)
}

func (r *Result) formatJSON() (string, error) {
	out := struct {
		Images     []Item `json:"images"`
		Failed     int    `json:"failed"`
		Created    int    `json:"created"`
		DurationMS int64  `json:"duration_ms"`
	}{
		Images:     r.Items,
		Failed:     r.Failed(),
		Created:    r.Created(),
		DurationMS: r.Duration.Milliseconds(),
	}
	if out.Images == nil {
		out.Images = []Item{}
	}
	bts, err := json.MarshalIndent(out, "", "  ")
	return string(bts) + "\n", err
}

func (r *Result) formatText() string {
	var b strings.Builder
	for _, it := range r.Items {
		if it.Failed() {
			fmt.Fprintf(&b, "%s: FAILED: %s\n", it.Image, it.Error)
			continue
		}
		fmt.Fprintf(&b, "%s: %d polygons\n", it.Image, it.Created)
	}
	fmt.Fprintf(&b, "%d images, %d polygons, %d failed in %v\n",
		len(r.Items), r.Created(), r.Failed(), r.Duration.Round(time.Millisecond))
	return b.String()
}
