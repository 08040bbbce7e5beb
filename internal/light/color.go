// Package light holds the static color table and the light-state request
// bodies sent to the bridge.
package light

import (
	"fmt"
	"sort"
)

const (
	defaultBri = 56
	defaultSat = 254
)

// HBS is a hue/brightness/saturation triple as accepted by the v1 light state endpoint
type HBS struct {
	Hue int
	Bri int
	Sat int
}

// Body returns the light state payload that switches the light on with this color
func (c HBS) Body() string {
	return fmt.Sprintf(`{ "on": true, "bri": %d, "hue": %d, "sat": %d }`, c.Bri, c.Hue, c.Sat)
}

var colors = map[string]HBS{
	"red":    {Hue: 64634, Bri: defaultBri, Sat: defaultSat},
	"orange": {Hue: 4835, Bri: defaultBri, Sat: defaultSat},
	"yellow": {Hue: 10152, Bri: defaultBri, Sat: defaultSat},
	"green":  {Hue: 29127, Bri: defaultBri, Sat: defaultSat},
	"blue":   {Hue: 44076, Bri: defaultBri, Sat: defaultSat},
	"purple": {Hue: 49041, Bri: defaultBri, Sat: defaultSat},
	"white":  {Hue: 41479, Bri: 100, Sat: 100},
}

// Resolve looks up a named color
func Resolve(name string) (HBS, bool) {
	c, ok := colors[name]
	return c, ok
}

// Names returns the known color names, sorted
func Names() []string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PowerBody returns the payload switching a light on or off
func PowerBody(on bool) string {
	return fmt.Sprintf(`{"on":%t}`, on)
}

// AlertBody returns the payload running a 15 second breathe cycle
func AlertBody() string {
	return `{"alert": "lselect"}`
}
