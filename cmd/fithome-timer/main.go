// Command fithome-timer runs the rest timer in a terminal and sounds the
// alarm through the host's audio player.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/meltforce/fithome/internal/alarm"
	"github.com/meltforce/fithome/internal/timer"
)

const usage = "enter: start/pause   r: reset   +N: add N seconds   q: quit"

func main() {
	seconds := flag.Int("seconds", timer.DefaultSeconds, "rest duration in seconds")
	player := flag.String("player", "auto", `audio player: "auto", "none" or a command reading WAV on stdin`)
	autostart := flag.Bool("start", false, "start counting immediately")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	t, err := timer.New(*seconds,
		timer.WithAlarm(alarm.NewSequence(alarm.Resolve(*player), log)),
		timer.WithListener(render),
		timer.WithLogger(log),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fithome-timer: %v\n", err)
		os.Exit(2)
	}
	defer t.Close()

	fmt.Println(usage)
	render(timer.Event{Type: timer.EventReset, State: t.State()})
	if *autostart {
		t.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := handle(t, strings.TrimSpace(line)); quit {
				return
			}
		}
	}
}

func handle(t *timer.Timer, cmd string) bool {
	switch {
	case cmd == "":
		t.Toggle()
	case cmd == "r":
		t.Reset()
	case cmd == "q":
		return true
	case strings.HasPrefix(cmd, "+"):
		n, err := strconv.Atoi(cmd[1:])
		if err != nil {
			fmt.Printf("bad amount %q\n", cmd[1:])
			return false
		}
		if _, err := t.AddTime(n); err != nil {
			fmt.Println(err)
		}
	default:
		fmt.Println(usage)
	}
	return false
}

func render(e timer.Event) {
	s := e.State
	status := "paused"
	if s.Running {
		status = "running"
	}
	if e.Type == timer.EventAlarm {
		fmt.Printf("\r%5s  %-7s\n", timer.Format(0), "time!")
		return
	}
	fmt.Printf("\r%5s  %-7s", s.Display, status)
}
