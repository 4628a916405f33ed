// Command kdbg is an interactive console for the kernel scheduler: a tick
// source runs in the background while the console lets you spawn threads,
// inspect the ready list and scheduler counters, and single-step extra
// ticks on demand — grounded on the teacher's RunHeadless path
// (hal/host_headless.go) for the background clock.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"

	"github.com/google/shlex"
	"golang.org/x/sync/errgroup"

	"tinykernel/hal"
	"tinykernel/kernel"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "kdbg:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := kernel.DefaultConfig()
	k := kernel.New(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := hal.RunHeadless(gctx, hal.HeadlessConfig{Hz: cfg.TickHz}, k.OnTick)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	con := &console{k: k}
	g.Go(func() error {
		defer stop()
		return con.repl(gctx)
	})

	return g.Wait()
}

type console struct {
	k *kernel.Kernel
}

func (c *console) repl(ctx context.Context) error {
	fmt.Println("kdbg: interactive kernel console. Type 'help' for commands.")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("kdbg> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := sc.Text()
		if ctx.Err() != nil {
			return nil
		}
		args, err := shlex.Split(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if done, err := c.dispatch(args); err != nil {
			fmt.Println("error:", err)
		} else if done {
			return nil
		}
	}
}

func (c *console) dispatch(args []string) (quit bool, err error) {
	switch args[0] {
	case "help":
		printHelp()
	case "quit", "exit":
		return true, nil
	case "ps":
		c.printThreads()
	case "stats":
		fmt.Printf("%+v\n", c.k.Stats())
	case "tick":
		n := 1
		if len(args) > 1 {
			n, err = strconv.Atoi(args[1])
			if err != nil {
				return false, fmt.Errorf("tick: %w", err)
			}
		}
		mc := hal.NewManualClock()
		mc.Step(n, c.k.OnTick)
		fmt.Println("now at tick", c.k.TicksNow())
	case "spawn":
		return false, c.cmdSpawn(args[1:])
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", args[0])
	}
	return false, nil
}

func printHelp() {
	fmt.Println(`commands:
  ps                     list threads (id, name, state, priorities, locks)
  stats                  print scheduler counters
  tick [n]               advance n ticks (default 1), out of band from the live clock
  spawn <name> <prio>    spawn a thread that loops sleeping 1 tick at a time
  quit                   exit`)
}

func (c *console) cmdSpawn(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: spawn <name> <priority>")
	}
	prio, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	id, err := c.k.ThreadCreate(args[0], prio, func(k *kernel.Kernel, self kernel.ThreadID) {
		for {
			k.SleepTicks(1)
		}
	})
	if err != nil {
		return err
	}
	fmt.Println("spawned", id)
	return nil
}

func (c *console) printThreads() {
	snaps := c.k.Snapshots()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
	fmt.Printf("%-4s %-16s %-8s %-4s %-4s %s\n", "id", "name", "state", "base", "eff", "locks")
	for _, s := range snaps {
		fmt.Printf("%-4d %-16s %-8s %-4d %-4d %d\n",
			s.ID, s.Name, s.State.String(), s.BasePriority, s.EffectivePriority, s.HeldLocks)
	}
}
