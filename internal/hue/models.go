package hue

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/amimof/huego"
)

// Response is a fully read bridge response
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the bridge answered 200
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// String renders the status line, headers and body for diagnostics
func (r *Response) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s -> %s", r.Method, r.Path, r.Status)

	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, strings.Join(r.Header[k], ", "))
	}

	if len(r.Body) > 0 {
		b.WriteString("\n\n")
		b.Write(r.Body)
	}
	return b.String()
}

// Light is a summary of a light as reported by the v1 API
type Light struct {
	ID        string
	Name      string
	Type      string
	On        bool
	Bri       int
	Hue       int
	Sat       int
	Reachable bool
}

func lightFromHuego(l huego.Light) Light {
	light := Light{
		ID:   strconv.Itoa(l.ID),
		Name: l.Name,
		Type: l.Type,
	}
	if l.State != nil {
		light.On = l.State.On
		light.Bri = int(l.State.Bri)
		light.Hue = int(l.State.Hue)
		light.Sat = int(l.State.Sat)
		light.Reachable = l.State.Reachable
	}
	return light
}

// Bridge is a bridge found on the local network
type Bridge struct {
	ID     string
	Host   string
	Source string // "mdns" or "nupnp"
}
