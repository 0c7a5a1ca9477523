package media

import (
	"fmt"
	"sort"
)

// Profile is a named ProRes encoder configuration.
type Profile struct {
	Label  string
	Codec  string
	Index  int // -profile:v value
	Vendor string
	PixFmt string
}

// Args returns the ffmpeg output arguments selecting this profile.
func (p Profile) Args() []string {
	return []string{
		"-codec:v", p.Codec,
		"-profile:v", fmt.Sprintf("%d", p.Index),
		"-vendor", p.Vendor,
		"-pix_fmt", p.PixFmt,
	}
}

const (
	defaultCodec  = "prores_ks"
	defaultVendor = "ap10"
	defaultPixFmt = "yuv422p10"
)

func proresProfile(label string, index int) Profile {
	return Profile{
		Label:  label,
		Codec:  defaultCodec,
		Index:  index,
		Vendor: defaultVendor,
		PixFmt: defaultPixFmt,
	}
}

func prores4444Profile(label string, index int) Profile {
	p := proresProfile(label, index)
	p.PixFmt = "yuva444p10"
	return p
}

// Profiles is the static encoding-profile table.
var Profiles = map[string]Profile{
	"prores_422_proxy": proresProfile("ProRes 422 Proxy", 0),
	"prores_422_lt":    proresProfile("ProRes 422 LT", 1),
	"prores_422":       proresProfile("ProRes 422", 2),
	"prores_422_hq":    proresProfile("ProRes 422 HQ", 3),
	"prores_4444":      prores4444Profile("ProRes 4444", 4),
	"prores_4444_xq":   prores4444Profile("ProRes 4444 XQ", 5),
}

// FrameratePreset is a named frame rate offered by the viewer.
type FrameratePreset struct {
	Label string
	Rate  Rational
}

// Framerates is the static frame-rate preset table.
var Framerates = map[string]FrameratePreset{
	"fps_23_98": {Label: "23.98 fps", Rate: Rational{24000, 1001}},
	"fps_24":    {Label: "24 fps", Rate: Rational{24, 1}},
	"fps_25":    {Label: "25 fps", Rate: Rational{25, 1}},
	"fps_30":    {Label: "30 fps", Rate: Rational{30, 1}},
	"fps_60":    {Label: "60 fps", Rate: Rational{60, 1}},
}

// LookupProfile resolves a profile key. Unknown keys return an error
// naming the valid choices.
func LookupProfile(key string) (Profile, error) {
	p, ok := Profiles[key]
	if !ok {
		return Profile{}, fmt.Errorf("unknown encoding profile %q (valid: %v)", key, sortedKeys(Profiles))
	}
	return p, nil
}

// LookupFramerate resolves a preset key. The empty key means "use the
// item's own rate" and returns a zero Rational with no error.
func LookupFramerate(key string) (Rational, error) {
	if key == "" {
		return Rational{}, nil
	}
	p, ok := Framerates[key]
	if !ok {
		return Rational{}, fmt.Errorf("unknown framerate preset %q (valid: %v)", key, sortedKeys(Framerates))
	}
	return p.Rate, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
