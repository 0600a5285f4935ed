package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/ahmedtd/linecoords/linemodel"
	"github.com/google/subcommands"
)

type GenerateCommand struct {
	commonFlags
}

var _ subcommands.Command = (*GenerateCommand)(nil)

func (*GenerateCommand) Name() string {
	return "generate"
}

func (*GenerateCommand) Synopsis() string {
	return "Render random line images and their coordinates"
}

func (*GenerateCommand) Usage() string {
	return ``
}

func (c *GenerateCommand) SetFlags(f *flag.FlagSet) {
	c.setDataFlags(f)
}

func (c *GenerateCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *GenerateCommand) executeErr(ctx context.Context) error {
	end, err := c.begin()
	if err != nil {
		return err
	}
	defer end()

	if _, err := linemodel.Generate(c.config()); err != nil {
		return fmt.Errorf("while generating: %w", err)
	}
	return nil
}
