package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/ahmedtd/linecoords/linemodel"
	"github.com/google/subcommands"
)

type RunCommand struct {
	commonFlags
}

var _ subcommands.Command = (*RunCommand)(nil)

func (*RunCommand) Name() string {
	return "run"
}

func (*RunCommand) Synopsis() string {
	return "Generate line images, train on them and report the test MAE"
}

func (*RunCommand) Usage() string {
	return ``
}

func (c *RunCommand) SetFlags(f *flag.FlagSet) {
	c.setDataFlags(f)
	c.setTrainFlags(f)
}

func (c *RunCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *RunCommand) executeErr(ctx context.Context) error {
	end, err := c.begin()
	if err != nil {
		return err
	}
	defer end()

	_, err = linemodel.Run(ctx, c.config(), os.Stdout)
	return err
}
