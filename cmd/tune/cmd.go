// Command tune searches position loop gains for the simulated motor.
package main

import (
	"flag"

	"github.com/edaniels/golog"

	"github.com/erh/dcmotorsim"
	"github.com/erh/dcmotorsim/tuning"
)

func main() {
	err := realMain()
	if err != nil {
		panic(err)
	}
}

func realMain() error {
	opts := tuning.DefaultOptions()
	flag.IntVar(&opts.MaxEvals, "max-evals", opts.MaxEvals, "objective evaluations before giving up")
	flag.DurationVar(&opts.ControlPeriod, "period", opts.ControlPeriod, "how often the host updates the drive")
	flag.Float64Var(&opts.OvershootWeight, "overshoot-weight", opts.OvershootWeight, "cost per count of overshoot")
	flag.Parse()

	logger := golog.NewDevelopmentLogger("tune")
	params := dcmotorsim.DefaultMotorParams()

	before, _ := tuning.Cost(params, opts.Initial, opts)
	logger.Infof("starting from %+v, cost %.2f", opts.Initial, before)

	res, err := tuning.Tune(params, opts)
	if err != nil {
		return err
	}

	logger.Infof("best gains %+v, cost %.2f", res.Gains, res.Cost)
	for _, r := range res.Responses {
		logger.Infof("  target %.0f: final %.2f overshoot %.2f settled %v in %v",
			r.Target, r.Final, r.Overshoot, r.Settled, r.SettlingTime)
	}
	return nil
}
