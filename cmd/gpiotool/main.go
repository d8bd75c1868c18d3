package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/BertoldVdb/go-gpiocdev/handletable"
	"github.com/BertoldVdb/go-gpiocdev/linux-pio/gpio"
	"github.com/BertoldVdb/go-gpiocdev/logrusconfig"
	"github.com/BertoldVdb/go-gpiocdev/poller"
	"github.com/sirupsen/logrus"
)

const usage = `Usage: gpiotool [flags] command [args]

Commands:
  info              show chip name, label and number of lines
  lines             show the state of every line
  get OFFSET...     read line values
  set OFFSET=V...   drive lines until interrupted
  watch OFFSET...   print edge events until interrupted

Flags:
`

func main() {
	chipPath := flag.String("chip", "/dev/gpiochip0", "The GPIO chip device to use")
	consumer := flag.String("consumer", "gpiotool", "Consumer label applied to requested lines")
	logrusconfig.InitParam()

	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logrusconfig.GetLogger(logrus.InfoLevel)

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	chip, err := gpio.Open(*chipPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open chip")
	}
	defer chip.Close()

	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "info":
		err = cmdInfo(chip)
	case "lines":
		err = cmdLines(chip)
	case "get":
		err = cmdGet(chip, args, *consumer)
	case "set":
		err = cmdSet(chip, args, *consumer, log)
	case "watch":
		err = cmdWatch(chip, args, *consumer, log)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		chip.Close()
		log.WithError(err).Fatalf("Command %s failed", flag.Arg(0))
	}
}

func parseOffsets(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, errors.New("No line offsets given")
	}

	offsets := make([]int, len(args))
	for i, a := range args {
		off, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("Invalid offset %q", a)
		}
		offsets[i] = off
	}

	return offsets, nil
}

func waitForSignal() os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	return <-c
}

func cmdInfo(chip *gpio.Chip) error {
	info, err := chip.GetInfo()
	if err != nil {
		return err
	}

	fmt.Printf("%s [%s] (%d lines)\n", info.Name, info.Label, info.Lines)
	return nil
}

func cmdLines(chip *gpio.Chip) error {
	info, err := chip.GetInfo()
	if err != nil {
		return err
	}

	fmt.Printf("%s - %d lines:\n", info.Name, info.Lines)
	for i := 0; i < info.Lines; i++ {
		line, err := chip.GetLineInfo(i)
		if err != nil {
			return err
		}

		name := line.Name
		if name == "" {
			name = "unnamed"
		}
		consumer := line.Consumer
		if consumer == "" {
			consumer = "unused"
		}
		polarity := "active-high"
		if line.ActiveLow {
			polarity = "active-low"
		}

		fmt.Printf("\tline %3d: %16q %16q %-6s %s\n", i, name, consumer, line.Direction, polarity)
	}

	return nil
}

func cmdGet(chip *gpio.Chip, args []string, consumer string) error {
	offsets, err := parseOffsets(args)
	if err != nil {
		return err
	}

	lines, err := chip.RequestLinesWithConfig(offsets, gpio.DirectionInput, gpio.LineRequestConfig{Consumer: consumer})
	if err != nil {
		return err
	}
	defer lines.Close()

	values, err := lines.ReadValues()
	if err != nil {
		return err
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%d=%d", offsets[i], v)
	}
	fmt.Println(strings.Join(out, " "))

	return nil
}

func cmdSet(chip *gpio.Chip, args []string, consumer string, log *logrus.Entry) error {
	if len(args) == 0 {
		return errors.New("No line values given")
	}

	offsets := make([]int, len(args))
	values := make([]int, len(args))
	for i, a := range args {
		parts := strings.SplitN(a, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("Invalid assignment %q", a)
		}

		off, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("Invalid offset %q", parts[0])
		}
		v, err := strconv.Atoi(parts[1])
		if err != nil || (v != 0 && v != 1) {
			return fmt.Errorf("Invalid value %q", parts[1])
		}

		offsets[i] = off
		values[i] = v
	}

	lines, err := chip.RequestLinesWithConfig(offsets, gpio.DirectionOutput, gpio.LineRequestConfig{
		Consumer:      consumer,
		DefaultValues: values,
	})
	if err != nil {
		return err
	}
	defer lines.Close()

	/* Write explicitly, defaults are not honoured by every driver */
	if err := lines.SetValues(values); err != nil {
		return err
	}

	log.Infof("Driving lines %v to %v, interrupt to release", offsets, values)
	sig := waitForSignal()
	log.Debugf("Received %s, releasing lines", sig)

	return nil
}

type watchedLine struct {
	id     string
	offset int
	events *gpio.EventRequestHandle
}

func (w *watchedLine) Close() error {
	return w.events.Close()
}

func cmdWatch(chip *gpio.Chip, args []string, consumer string, log *logrus.Entry) error {
	offsets, err := parseOffsets(args)
	if err != nil {
		return err
	}

	table := handletable.New()
	defer table.Close()

	var p *poller.Poller
	p, err = poller.New(func(token interface{}) {
		id := token.(string)

		r, ok := table.Get(id)
		if !ok {
			log.Debugf("Notification for released handle %s", id)
			return
		}
		w := r.(*watchedLine)

		ev, err := w.events.ReadEventAndRegister(p, id)
		if err != nil {
			log.WithError(err).Warnf("Stopped watching line %d", w.offset)
			table.Release(id)
			return
		}

		fmt.Printf("%d.%09d line %3d %s\n",
			ev.Timestamp/uint64(time.Second), ev.Timestamp%uint64(time.Second), w.offset, ev.Edge)
	})
	if err != nil {
		return err
	}
	defer p.Close()
	p.Logger = logrusconfig.Component(log, "poller")

	for _, off := range offsets {
		events, err := chip.RequestEventWithConfig(off, gpio.EventRequestConfig{Consumer: consumer})
		if err != nil {
			return fmt.Errorf("Failed to watch line %d: %w", off, err)
		}

		w := &watchedLine{offset: off, events: events}
		w.id, err = table.Add(w)
		if err != nil {
			events.Close()
			return err
		}

		if err := events.RegisterForReadiness(p, w.id); err != nil {
			return err
		}

		log.Debugf("Watching line %d as %s", off, w.id)
	}

	go func() {
		sig := waitForSignal()
		log.Debugf("Received %s, stopping", sig)
		p.Close()
	}()

	log.Infof("Watching lines %v, interrupt to stop", offsets)
	return p.Run()
}
