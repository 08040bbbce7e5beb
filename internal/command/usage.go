package command

import (
	"fmt"
	"strings"

	"github.com/dokzlo13/huecmd/internal/light"
)

func (d *Dispatcher) printUsage() {
	colors := strings.Join(light.Names(), "|")
	lines := []string{
		"Use this command to control your Philips Hue lights.",
		"Get the state of a light ................  huecmd <light#> state",
		"Turn light ON ...........................  huecmd <light#> on",
		"Turn light OFF ..........................  huecmd <light#> off",
		"Alert on light for 15 seconds ...........  huecmd <light#> alert",
		"Set light color (using color name) ......  huecmd <light#> color " + colors,
		"Set light hue, brightness, saturation ...  huecmd <light#> hbs <hue 0..65535> <brightness 0..254> <saturation 0..254>",
		"Monitor queue for light commands ........  huecmd queue",
		"Send a light command to the queue .......  huecmd enqueue 'PUT|/api/username/lights/1/state|{\"on\":true}'",
		"List lights on the bridge ...............  huecmd lights",
		"Find bridges on the local network .......  huecmd discover",
	}
	for _, line := range lines {
		fmt.Fprintln(d.deps.Out, line)
	}
}
