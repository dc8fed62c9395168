package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"gaugedrive/core"
	"gaugedrive/host/config"
	"gaugedrive/host/feeder"
	"gaugedrive/host/price"
	"gaugedrive/protocol"
	"gaugedrive/sim"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	device     = flag.String("device", "", "Serial device path (overrides config)")
	simulate   = flag.Bool("sim", false, "Drive a simulated gauge instead of a serial device")
	cycles     = flag.Int("cycles", 1, "Sweep cycles (0 = until interrupted)")
	verbose    = flag.Bool("v", false, "Enable debug logging")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command> [args]\n\n", os.Args[0])
	fmt.Fprintln(flag.CommandLine.Output(), "Commands:")
	fmt.Fprintln(flag.CommandLine.Output(), "  run            Poll the price source and keep the dial updated")
	fmt.Fprintln(flag.CommandLine.Output(), "  send <byte>    Send one command byte (decimal or 0x hex)")
	fmt.Fprintln(flag.CommandLine.Output(), "  percent <p>    Send the command byte for a percentage")
	fmt.Fprintln(flag.CommandLine.Output(), "  sweep          Sweep the needle across the dial")
	fmt.Fprintln(flag.CommandLine.Output(), "  fit            Fit the calibration curve to the bench points")
	fmt.Fprintln(flag.CommandLine.Output(), "  console        Interactive command console")
	fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Log, *verbose, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Arg(0), flag.Args()[1:], cfg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, cfg *config.Config, logger *slog.Logger) error {
	// fit needs no gauge
	if cmd == "fit" {
		return printFit(os.Stdout)
	}

	dev, err := openGauge(cfg, logger)
	if err != nil {
		return err
	}
	defer dev.Close()

	switch cmd {
	case "run":
		if cfg.Price.URL == "" {
			return fmt.Errorf("price.url is not configured")
		}
		f := feeder.New(dev, price.NewClient(cfg.Price, logger), cfg, logger)
		return f.Run(ctx)

	case "send":
		if len(args) != 1 {
			return fmt.Errorf("send needs one byte argument")
		}
		return sendByte(feeder.New(dev, nil, cfg, logger), args[0], os.Stdout)

	case "percent":
		if len(args) != 1 {
			return fmt.Errorf("percent needs one argument")
		}
		return sendPercent(feeder.New(dev, nil, cfg, logger), args[0], os.Stdout)

	case "sweep":
		return feeder.New(dev, nil, cfg, logger).Sweep(ctx, *cycles)

	case "console":
		return console(ctx, feeder.New(dev, nil, cfg, logger), os.Stdin, os.Stdout)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	return cfg, nil
}

// newLogger builds the slog handler selected by the log config
func newLogger(cfg config.LogConfig, verbose bool, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func openGauge(cfg *config.Config, logger *slog.Logger) (*feeder.Device, error) {
	dev := feeder.NewDevice(logger)
	if *simulate {
		gauge, err := sim.New(sim.Options{})
		if err != nil {
			return nil, fmt.Errorf("start simulated gauge: %w", err)
		}
		dev.Attach(gauge)
		logger.Info("using simulated gauge")
		return dev, nil
	}
	if err := dev.ConnectWithConfig(&cfg.Serial); err != nil {
		return nil, err
	}
	return dev, nil
}

func sendByte(f *feeder.Feeder, arg string, out io.Writer) error {
	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return fmt.Errorf("invalid byte %q: %w", arg, err)
	}
	echo, err := f.Send(byte(v))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "sent 0x%02x (%.1f%%), echo % x\n", v, protocol.PercentFromByte(byte(v)), echo)
	return nil
}

func sendPercent(f *feeder.Feeder, arg string, out io.Writer) error {
	pct, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("invalid percentage %q: %w", arg, err)
	}
	return sendByte(f, strconv.Itoa(int(protocol.ByteFromPercent(pct))), out)
}

func printFit(out io.Writer) error {
	points := core.CalibrationPoints()
	curve, err := core.FitQuadratic(points)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "y = %.8f*r^2 + %.6f*r + %.6f (x%.0f)\n", curve.A, curve.B, curve.C, curve.Scale)
	fmt.Fprintln(out, "\nreading  measured  fitted")
	for _, p := range points {
		fitted := curve.A*p.Reading*p.Reading + curve.B*p.Reading + curve.C
		fmt.Fprintf(out, "%7.0f  %8.0f  %6.2f\n", p.Reading, p.Duty, fitted)
	}
	return nil
}

func console(ctx context.Context, f *feeder.Feeder, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(in)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		var err error
		switch parts[0] {
		case "quit", "exit", "q":
			return nil

		case "help", "?":
			printHelp(out)

		case "send", "s":
			if len(parts) != 2 {
				err = fmt.Errorf("usage: send <byte>")
				break
			}
			err = sendByte(f, parts[1], out)

		case "percent", "p":
			if len(parts) != 2 {
				err = fmt.Errorf("usage: percent <p>")
				break
			}
			err = sendPercent(f, parts[1], out)

		case "sweep":
			err = f.Sweep(ctx, 1)

		case "fit":
			err = printFit(out)

		default:
			fmt.Fprintf(out, "Unknown command: %s (type 'help' for available commands)\n", parts[0])
		}

		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "\nAvailable commands:")
	fmt.Fprintln(out, "  help           - Show this help message")
	fmt.Fprintln(out, "  send <byte>    - Send a command byte (decimal or 0x hex)")
	fmt.Fprintln(out, "  percent <p>    - Send the byte for a percentage")
	fmt.Fprintln(out, "  sweep          - Sweep the needle once")
	fmt.Fprintln(out, "  fit            - Print the fitted calibration curve")
	fmt.Fprintln(out, "  quit/exit/q    - Exit the program")
	fmt.Fprintln(out)
}
