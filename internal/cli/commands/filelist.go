package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"instcheck/internal/config"
	"instcheck/internal/filelist"
)

// FilelistCommand handles the filelist command
type FilelistCommand struct {
	config    *config.Config
	generator *filelist.Generator
}

// NewFilelistCommand creates a new FilelistCommand
func NewFilelistCommand(cfg *config.Config, generator *filelist.Generator) *FilelistCommand {
	return &FilelistCommand{
		config:    cfg,
		generator: generator,
	}
}

// Execute runs the command
func (fc *FilelistCommand) Execute(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out, closeOutput, err := openOutput(fc.config.Output, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() {
		if cerr := closeOutput(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
	}()

	return fc.generator.Generate(ctx, out, args[0], fc.config.Prefix)
}
