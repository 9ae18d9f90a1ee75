package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vitaminmoo/iqos-tool/internal/commands"
	"github.com/vitaminmoo/iqos-tool/internal/config"
	"github.com/vitaminmoo/iqos-tool/internal/device"
	"github.com/vitaminmoo/iqos-tool/internal/logging"
	"github.com/vitaminmoo/iqos-tool/internal/tui"
)

// CLI is the root command structure for iqos.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable verbose debug output"`
	Config  string `short:"c" type:"path" help:"Config file (default ~/.iqos/config.yaml)"`
	Address string `help:"Connect to this device address instead of scanning by name"`
	Family  string `help:"Override the device family (auto, base, iluma)"`

	// Default command - TUI
	Tui TuiCmd `cmd:"" default:"withargs" help:"Launch interactive TUI (default)"`

	Device     DeviceCmd     `cmd:"" help:"Device info and discovery"`
	Brightness BrightnessCmd `cmd:"" help:"Set display brightness"`
	Gesture    GestureCmd    `cmd:"" help:"Enable or disable gesture control"`
	FlexPuff   FlexPuffCmd   `cmd:"" name:"flexpuff" help:"Enable or disable FlexPuff"`
	AutoStart  AutoStartCmd  `cmd:"" name:"autostart" help:"Enable or disable auto start"`
	Debug      DebugCmd      `cmd:"" help:"Debug and development tools"`
}

// setup loads configuration, applies global flag overrides and builds the
// logger. The returned context is cancelled on SIGINT or SIGTERM.
func (c *CLI) setup() (context.Context, context.CancelFunc, *commands.Env, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, nil, nil, err
	}
	if c.Address != "" {
		cfg.Scan.Address = c.Address
	}
	if c.Family != "" {
		cfg.Device.Family = c.Family
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	log, err := logging.New(cfg.Logging, c.Verbose)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cancel := func() {
		stop()
		_ = log.Sync()
	}
	return ctx, cancel, &commands.Env{Config: cfg, Log: log, Out: os.Stdout}, nil
}

// --- TUI Command ---

type TuiCmd struct{}

func (c *TuiCmd) Run(globals *CLI) error {
	ctx, cancel, env, err := globals.setup()
	if err != nil {
		return err
	}
	defer cancel()

	// The alternate screen owns the terminal; only log to a file.
	if env.Config.Logging.File == "" {
		env.Log = zap.NewNop()
	}
	return tui.Run(ctx, env)
}

// --- Device Commands ---

type DeviceCmd struct {
	Info    DeviceInfoCmd    `cmd:"" help:"Print the device identity and battery level"`
	Explore DeviceExploreCmd `cmd:"" help:"List all BLE services and characteristics and how they are routed"`
	Watch   DeviceWatchCmd   `cmd:"" help:"Stay connected and print battery changes (publishes to MQTT when enabled)"`
}

type DeviceInfoCmd struct{}

func (c *DeviceInfoCmd) Run(globals *CLI) error {
	ctx, cancel, env, err := globals.setup()
	if err != nil {
		return err
	}
	defer cancel()
	return commands.Info(ctx, env)
}

type DeviceExploreCmd struct{}

func (c *DeviceExploreCmd) Run(globals *CLI) error {
	ctx, cancel, env, err := globals.setup()
	if err != nil {
		return err
	}
	defer cancel()
	return commands.Explore(ctx, env)
}

type DeviceWatchCmd struct {
	MQTT bool `name:"mqtt" help:"Publish state to MQTT even if disabled in config"`
}

func (c *DeviceWatchCmd) Run(globals *CLI) error {
	ctx, cancel, env, err := globals.setup()
	if err != nil {
		return err
	}
	defer cancel()
	if c.MQTT {
		env.Config.MQTT.Enabled = true
		if err := env.Config.Validate(); err != nil {
			return err
		}
	}
	return commands.Watch(ctx, env)
}

// --- Control Commands ---

type BrightnessCmd struct {
	Level string `arg:"" enum:"high,low" help:"Brightness level (high, low)"`
}

func (c *BrightnessCmd) Run(globals *CLI) error {
	name := device.BrightnessLow
	if c.Level == "high" {
		name = device.BrightnessHigh
	}
	return runCommand(globals, name)
}

type GestureCmd struct {
	State string `arg:"" enum:"on,off" help:"on or off"`
}

func (c *GestureCmd) Run(globals *CLI) error {
	return runCommand(globals, commands.Toggle(c.State == "on", device.GestureEnable, device.GestureDisable))
}

type FlexPuffCmd struct {
	State string `arg:"" enum:"on,off" help:"on or off"`
}

func (c *FlexPuffCmd) Run(globals *CLI) error {
	return runCommand(globals, commands.Toggle(c.State == "on", device.FlexPuffEnable, device.FlexPuffDisable))
}

type AutoStartCmd struct {
	State string `arg:"" enum:"on,off" help:"on or off"`
}

func (c *AutoStartCmd) Run(globals *CLI) error {
	return runCommand(globals, commands.Toggle(c.State == "on", device.AutoStartEnable, device.AutoStartDisable))
}

func runCommand(globals *CLI, name device.CommandName) error {
	ctx, cancel, env, err := globals.setup()
	if err != nil {
		return err
	}
	defer cancel()
	return commands.Run(ctx, env, name)
}

// --- Debug Commands ---

type DebugCmd struct {
	Commands DebugCommandsCmd `cmd:"" help:"Print the command table of a device family (no device needed)"`
}

type DebugCommandsCmd struct {
	Family string `arg:"" optional:"" enum:"base,iluma" default:"iluma" help:"Device family (base, iluma)"`
}

func (c *DebugCommandsCmd) Run(globals *CLI) error {
	family, err := device.ParseFamily(c.Family)
	if err != nil {
		return err
	}
	commands.ListCommands(os.Stdout, family)
	return nil
}
