package panorama

import(
	"fmt"
	"math"
)

type rational [2]int64

// An ExposureValue details how a tile was exposed, and allows us to
// figure out how much physical illumination was hitting the sensor,
// given a pixel color from the image. Tiles in a panorama are often
// shot with auto exposure, so this is what lets them be blended.
type ExposureValue struct {
	ISO           int64    // 100, 800, etc.
	ApertureX10   int64    // f/5.6 is the integer 56.
	ShutterSpeed  rational // 1/500, 1/1000, etc.
	EV            float64  // https://en.wikipedia.org/wiki/Exposure_value, normalized to ISO 100

	// This is the only value used downstream; it is used to scale the
	// pixel values into radiance.
	IlluminanceAtMaxExposure float64 // How many lux generate a channel exposure == 0xFFFF
}

func (ev ExposureValue)String() string {
	s := fmt.Sprintf("f/%.1f", float32(ev.ApertureX10)/10.0)
	if ev.ShutterSpeed[1] != 1 {
		s += fmt.Sprintf(", %d/%4d", ev.ShutterSpeed[0], ev.ShutterSpeed[1])
	} else {
		s += fmt.Sprintf(", %d", ev.ShutterSpeed[0])
	}
	s += fmt.Sprintf(", ISO%d", ev.ISO)
	return s + fmt.Sprintf(", EV %5.2f (%6.0f lux)", ev.EV, ev.IlluminanceAtMaxExposure)
}

// Validate computes EV and IlluminanceAtMaxExposure from the raw
// exposure settings.
func (ev *ExposureValue)Validate() error {
	if ev.ISO <= 0 || ev.ApertureX10 <= 0 || ev.ShutterSpeed[0] <= 0 || ev.ShutterSpeed[1] <= 0 {
		return fmt.Errorf("incomplete exposure info: %v", ev)
	}

	fNumber := float64(ev.ApertureX10) / 10.0
	seconds := float64(ev.ShutterSpeed[0]) / float64(ev.ShutterSpeed[1])

	// The higher the ISO, the less physical light needed to fully expose.
	ev.EV = math.Log2(fNumber*fNumber/seconds) - math.Log2(float64(ev.ISO)/100.0)
	if ev.EV < -6 || ev.EV > 24 {
		return fmt.Errorf("exposure info looks suspicious, EV=%.2f: %v", ev.EV, ev)
	}

	// https://en.wikipedia.org/wiki/Exposure_value#EV_as_a_measure_of_luminance_and_illuminance
	// EV 6 is 160 lux, and each stop doubles it.
	ev.IlluminanceAtMaxExposure = 2.5 * math.Exp2(ev.EV)

	return nil
}
