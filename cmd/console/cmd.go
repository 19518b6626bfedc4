// Command console is an interactive stand-in for the host controller. It talks to the simulator
// over the same link a real controller would.
package main

import (
	"context"
	"flag"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/erh/dcmotorsim"
)

func main() {
	err := realMain()
	if err != nil {
		panic(err)
	}
}

func realMain() error {
	device := flag.String("serial", "", "serial device of the simulator")
	baud := flag.Int("baud", 115200, "serial baud rate")
	addr := flag.String("tcp", "", "tcp address of the simulator, instead of -serial")
	flag.Parse()

	logger := golog.NewDevelopmentLogger("console")

	link, err := dial(*device, *baud, *addr)
	if err != nil {
		return err
	}

	ctrl := dcmotorsim.NewController(link, logger)
	ctrl.Start()
	defer ctrl.Close()

	shell := ishell.New()
	shell.Println("DC motor simulator console")
	addCommands(shell, ctrl)
	shell.Run()
	return nil
}

func dial(device string, baud int, addr string) (io.ReadWriteCloser, error) {
	switch {
	case addr != "":
		conn, err := net.Dial("tcp", addr)
		return conn, errors.Wrapf(err, "connecting to %s", addr)
	case device != "":
		return dcmotorsim.OpenSerial(dcmotorsim.SerialConfig{Device: device, Baud: baud})
	default:
		return nil, errors.New("one of -serial or -tcp is required")
	}
}

func addCommands(shell *ishell.Shell, ctrl *dcmotorsim.Controller) {
	shell.AddCmd(&ishell.Cmd{
		Name: "drive",
		Help: "drive <-255..255>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errors.New("usage: drive <value>"))
				return
			}
			drive, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if err := ctrl.SetDrive(context.Background(), drive); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "goto",
		Help: "goto <position> [tolerance] [timeout]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(errors.New("usage: goto <position> [tolerance] [timeout]"))
				return
			}
			target, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(err)
				return
			}
			tolerance := 1.0
			if len(c.Args) > 1 {
				if tolerance, err = strconv.ParseFloat(c.Args[1], 64); err != nil {
					c.Err(err)
					return
				}
			}
			timeout := 30 * time.Second
			if len(c.Args) > 2 {
				if timeout, err = time.ParseDuration(c.Args[2]); err != nil {
					c.Err(err)
					return
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			start := time.Now()
			if err := ctrl.GoTo(ctx, target, tolerance); err != nil {
				c.Err(err)
				return
			}
			pos, _ := ctrl.Position()
			c.Printf("at %.1f after %v\n", pos, time.Since(start).Round(time.Millisecond))
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "gains",
		Help: "gains <p> <i> <d>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 3 {
				c.Err(errors.New("usage: gains <p> <i> <d>"))
				return
			}
			var g [3]float64
			for i, a := range c.Args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					c.Err(err)
					return
				}
				g[i] = v
			}
			ctrl.SetGains(dcmotorsim.Gains{P: g[0], I: g[1], D: g[2]})
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stop",
		Help: "send a zero drive",
		Func: func(c *ishell.Context) {
			if err := ctrl.Stop(context.Background()); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "pos",
		Help: "last reported position",
		Func: func(c *ishell.Context) {
			pos, ok := ctrl.Position()
			if !ok {
				c.Println("no report yet")
				return
			}
			c.Printf("%.1f\n", pos)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "watch",
		Help: "watch [duration], print the position every report period",
		Func: func(c *ishell.Context) {
			d := 2 * time.Second
			if len(c.Args) > 0 {
				var err error
				if d, err = time.ParseDuration(c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			}
			for end := time.Now().Add(d); time.Now().Before(end); time.Sleep(100 * time.Millisecond) {
				pos, _ := ctrl.Position()
				c.Printf("%.1f\n", pos)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "raw",
		Help: `raw <text>, sent as is with \n, \r and \t unescaped`,
		Func: func(c *ishell.Context) {
			text := strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t").Replace(strings.Join(c.RawArgs[1:], " "))
			if err := ctrl.Send([]byte(text)); err != nil {
				c.Err(err)
			}
		},
	})
}
