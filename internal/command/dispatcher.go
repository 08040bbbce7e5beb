// Package command maps command-line keywords to bridge and queue actions.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huecmd/internal/config"
	"github.com/dokzlo13/huecmd/internal/hue"
	"github.com/dokzlo13/huecmd/internal/light"
	"github.com/dokzlo13/huecmd/internal/metrics"
	"github.com/dokzlo13/huecmd/internal/queue"
)

// ErrUsage is returned when a command is missing arguments or has malformed ones
var ErrUsage = errors.New("invalid arguments")

// Kind is a command keyword
type Kind string

const (
	KindState    Kind = "state"
	KindOn       Kind = "on"
	KindOff      Kind = "off"
	KindAlert    Kind = "alert"
	KindColor    Kind = "color"
	KindHBS      Kind = "hbs"
	KindQueue    Kind = "queue"
	KindDiscover Kind = "discover"
	KindLights   Kind = "lights"
	KindEnqueue  Kind = "enqueue"
)

// Bridge is the subset of the bridge client used by commands
type Bridge interface {
	Send(ctx context.Context, method, path, body string) (*hue.Response, error)
	Lights(ctx context.Context, username string) ([]hue.Light, error)
}

// QueueOpener opens the configured queue; the returned func releases it
type QueueOpener func(ctx context.Context) (queue.Queue, func(), error)

// DiscoverFunc finds bridges on the local network
type DiscoverFunc func(ctx context.Context, timeout time.Duration) ([]hue.Bridge, error)

// Deps are the collaborators a Dispatcher needs
type Deps struct {
	Config    *config.Config
	Bridge    Bridge
	OpenQueue QueueOpener
	Discover  DiscoverFunc
	Out       io.Writer
}

type invocation struct {
	LightID string
	Args    []string // arguments after the keyword
}

type handler func(ctx context.Context, inv invocation) error

// Dispatcher runs one command per process invocation
type Dispatcher struct {
	deps Deps
	cfg  *config.Config

	// keyed by the second argument, e.g. "1 on"
	lightCommands map[Kind]handler
	// keyed by the first argument, e.g. "discover"
	globalCommands map[Kind]handler
}

// NewDispatcher creates a Dispatcher with the full command table
func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{deps: deps, cfg: deps.Config}

	d.lightCommands = map[Kind]handler{
		KindState: d.state,
		KindOn:    d.power(true),
		KindOff:   d.power(false),
		KindAlert: d.alert,
		KindColor: d.color,
		KindHBS:   d.hbs,
		KindQueue: d.queue,
	}
	d.globalCommands = map[Kind]handler{
		KindQueue:    d.queue,
		KindDiscover: d.discover,
		KindLights:   d.lights,
		KindEnqueue:  d.enqueue,
	}
	return d
}

// Run executes the command named by args.
// Unknown keywords and unknown colors are reported but are not errors.
func (d *Dispatcher) Run(ctx context.Context, args []string) error {
	if len(args) < 1 || args[0] == "-h" {
		d.printUsage()
		return nil
	}

	if h, ok := d.globalCommands[Kind(args[0])]; ok {
		return h(ctx, invocation{Args: args[1:]})
	}

	keyword := args[0]
	if len(args) > 1 {
		keyword = args[1]
	}
	inv := invocation{LightID: args[0]}
	if len(args) > 2 {
		inv.Args = args[2:]
	}

	h, ok := d.lightCommands[Kind(keyword)]
	if !ok {
		fmt.Fprintln(d.deps.Out, "Unrecognized command. Type huecmd -h for help.")
		return nil
	}
	return h(ctx, inv)
}

func (d *Dispatcher) statePath(id string) string {
	return hue.StatePath(d.cfg.Hue.Username, id)
}

func (d *Dispatcher) state(ctx context.Context, inv invocation) error {
	log.Info().Str("light", inv.LightID).Msg("Getting light state")

	resp, err := d.deps.Bridge.Send(ctx, http.MethodGet, hue.LightPath(d.cfg.Hue.Username, inv.LightID), "")
	if err != nil {
		return err
	}
	if len(resp.Body) > 0 {
		fmt.Fprintln(d.deps.Out, string(resp.Body))
	}
	return nil
}

func (d *Dispatcher) power(on bool) handler {
	return func(ctx context.Context, inv invocation) error {
		if on {
			log.Info().Str("light", inv.LightID).Msg("Turning light on")
		} else {
			log.Info().Str("light", inv.LightID).Msg("Turning light off")
		}
		_, err := d.deps.Bridge.Send(ctx, http.MethodPut, d.statePath(inv.LightID), light.PowerBody(on))
		return err
	}
}

func (d *Dispatcher) alert(ctx context.Context, inv invocation) error {
	log.Info().Str("light", inv.LightID).Msg("Alerting on light")
	_, err := d.deps.Bridge.Send(ctx, http.MethodPut, d.statePath(inv.LightID), light.AlertBody())
	return err
}

func (d *Dispatcher) color(ctx context.Context, inv invocation) error {
	if len(inv.Args) < 1 {
		return fmt.Errorf("%w: color requires a color name", ErrUsage)
	}
	name := inv.Args[0]
	log.Info().Str("color", name).Msg("Setting hue-brightness-saturation for color name")

	c, ok := light.Resolve(name)
	if !ok {
		log.Error().Str("color", name).Strs("known", light.Names()).Msg("Unknown color name")
		return nil
	}
	return d.setHBS(ctx, inv.LightID, c)
}

func (d *Dispatcher) hbs(ctx context.Context, inv invocation) error {
	if len(inv.Args) < 3 {
		return fmt.Errorf("%w: hbs requires <hue> <brightness> <saturation>", ErrUsage)
	}

	var values [3]int
	for i, raw := range inv.Args[:3] {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrUsage, raw)
		}
		values[i] = v
	}
	return d.setHBS(ctx, inv.LightID, light.HBS{Hue: values[0], Bri: values[1], Sat: values[2]})
}

func (d *Dispatcher) setHBS(ctx context.Context, id string, c light.HBS) error {
	log.Info().
		Str("light", id).
		Int("hue", c.Hue).
		Int("bri", c.Bri).
		Int("sat", c.Sat).
		Msg("Setting light hue-brightness-saturation")
	_, err := d.deps.Bridge.Send(ctx, http.MethodPut, d.statePath(id), c.Body())
	return err
}

func (d *Dispatcher) queue(ctx context.Context, _ invocation) error {
	q, release, err := d.deps.OpenQueue(ctx)
	if err != nil {
		return err
	}
	defer release()

	// The metrics server lives only as long as the poller
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.cfg.Metrics.Enabled {
		srv := metrics.NewServer(d.cfg.Metrics.Host, d.cfg.Metrics.Port, d.cfg.ShutdownTimeout.Duration())
		if err := srv.Start(ctx); err != nil {
			return err
		}
	}

	poller := queue.NewPoller(q, d.deps.Bridge, queue.Options{
		Username:     d.cfg.Hue.Username,
		MaxMessages:  d.cfg.Queue.MaxMessages,
		WaitTime:     d.cfg.Queue.WaitTime.Duration(),
		PollInterval: d.cfg.Queue.PollInterval.Duration(),
	})
	return poller.Run(ctx)
}

func (d *Dispatcher) enqueue(ctx context.Context, inv invocation) error {
	if len(inv.Args) < 1 {
		return fmt.Errorf("%w: enqueue requires a message", ErrUsage)
	}
	body := inv.Args[0]
	if _, err := queue.ParseCommand(body, d.cfg.Hue.Username); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	q, release, err := d.deps.OpenQueue(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := q.Send(ctx, body); err != nil {
		return fmt.Errorf("failed to enqueue: %w", err)
	}
	log.Info().Str("queue", q.URL()).Str("body", body).Msg("Message enqueued")
	return nil
}

func (d *Dispatcher) discover(ctx context.Context, _ invocation) error {
	bridges, err := d.deps.Discover(ctx, d.cfg.Discovery.Timeout.Duration())
	if err != nil {
		return err
	}
	if len(bridges) == 0 {
		fmt.Fprintln(d.deps.Out, "No bridges found.")
		return nil
	}
	for _, b := range bridges {
		fmt.Fprintf(d.deps.Out, "%-20s %-18s %s\n", b.Host, b.ID, b.Source)
	}
	return nil
}

func (d *Dispatcher) lights(ctx context.Context, _ invocation) error {
	lights, err := d.deps.Bridge.Lights(ctx, d.cfg.Hue.Username)
	if err != nil {
		return err
	}
	for _, l := range lights {
		fmt.Fprintf(d.deps.Out, "%-4s %-24s on=%-5t bri=%-3d hue=%-5d sat=%-3d reachable=%t\n",
			l.ID, l.Name, l.On, l.Bri, l.Hue, l.Sat, l.Reachable)
	}
	return nil
}
