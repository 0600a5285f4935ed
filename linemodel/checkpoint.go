package linemodel

import (
	"fmt"
	"os"

	"github.com/ahmedtd/linecoords/toolbox"
)

// LoadCheckpoint restores network weights, and Adam state if aep is non-nil,
// from a safetensors file.
func LoadCheckpoint(path string, net *toolbox.Network, aep *toolbox.AdamEvaluationParameters) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("while opening checkpoint file: %w", err)
	}
	defer f.Close()

	tensors, err := toolbox.ReadSafeTensors(f)
	if err != nil {
		return fmt.Errorf("while reading checkpoint tensors: %w", err)
	}

	if err := net.LoadTensors(tensors); err != nil {
		return fmt.Errorf("while restoring network: %w", err)
	}
	if aep != nil {
		if err := aep.LoadTensors(tensors); err != nil {
			return fmt.Errorf("while restoring Adam: %w", err)
		}
	}

	return nil
}

// WriteCheckpoint saves network weights and Adam state.
func WriteCheckpoint(path string, net *toolbox.Network, aep *toolbox.AdamEvaluationParameters) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("while creating checkpoint file: %w", err)
	}
	defer f.Close()

	tensors := map[string]*toolbox.AF32{}

	net.DumpTensors(tensors)
	aep.DumpTensors(tensors)

	if err := toolbox.WriteSafeTensors(f, tensors); err != nil {
		return fmt.Errorf("while writing checkpoint tensors: %w", err)
	}

	return f.Close()
}
