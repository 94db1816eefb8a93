package probe

import (
	"fmt"
	"strconv"

	"mmdevice/internal/device"
)

// Report is a read-only snapshot of one device.
type Report struct {
	Label   string            `json:"label" yaml:"label"`
	Adapter string            `json:"adapter" yaml:"adapter"`
	Device  string            `json:"device" yaml:"device"`
	Type    string            `json:"type" yaml:"type"`
	State   string            `json:"state" yaml:"state"`
	Values  map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
	Errors  []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Report reads the category-specific values of every initialized device.
// Read failures are recorded in the report rather than returned.
func (s *Session) Report() []Report {
	out := make([]Report, 0, len(s.order))
	for _, label := range s.order {
		out = append(out, describe(s.devices[label]))
	}
	return out
}

func describe(d device.Device) Report {
	r := Report{
		Label:   d.Label(),
		Adapter: d.AdapterName(),
		Device:  d.Name(),
		Type:    d.Type().String(),
		State:   string(d.State()),
		Values:  map[string]string{},
	}
	if d.State() != device.StateInitialized {
		return r
	}
	put := func(key string, v string, err error) {
		if err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", key, err))
			return
		}
		r.Values[key] = v
	}
	fmtFloat := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

	switch v := d.(type) {
	case *device.Camera:
		w, err := v.ImageWidth()
		put("width", strconv.Itoa(w), err)
		h, err := v.ImageHeight()
		put("height", strconv.Itoa(h), err)
		bpp, err := v.ImageBytesPerPixel()
		put("bytes_per_pixel", strconv.Itoa(bpp), err)
		ms, err := v.Exposure()
		put("exposure_ms", fmtFloat(ms), err)
	case *device.Stage:
		pos, err := v.PositionUm()
		put("position_um", fmtFloat(pos), err)
	case *device.XYStage:
		x, y, err := v.XYPositionUm()
		put("position_um", fmtFloat(x)+","+fmtFloat(y), err)
	case *device.Shutter:
		open, err := v.IsOpen()
		put("open", strconv.FormatBool(open), err)
	case *device.StateDevice:
		n, err := v.NumberOfPositions()
		put("positions", strconv.Itoa(n), err)
		pos, err := v.Position()
		put("position", strconv.Itoa(pos), err)
	}
	return r
}
