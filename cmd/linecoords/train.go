package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/ahmedtd/linecoords/linemodel"
	"github.com/google/subcommands"
)

type TrainCommand struct {
	commonFlags
}

var _ subcommands.Command = (*TrainCommand)(nil)

func (*TrainCommand) Name() string {
	return "train"
}

func (*TrainCommand) Synopsis() string {
	return "Train on a directory filled by generate and report the test MAE"
}

func (*TrainCommand) Usage() string {
	return ``
}

func (c *TrainCommand) SetFlags(f *flag.FlagSet) {
	c.setDataFlags(f)
	c.setTrainFlags(f)
}

func (c *TrainCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *TrainCommand) executeErr(ctx context.Context) error {
	end, err := c.begin()
	if err != nil {
		return err
	}
	defer end()

	_, err = linemodel.TrainFromDir(ctx, c.config(), os.Stdout)
	return err
}
