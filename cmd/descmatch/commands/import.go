package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/descmatch/descriptor"
)

// featureFile is the JSON layout accepted by import.
type featureFile struct {
	Keypoints []struct {
		X     float32 `json:"x"`
		Y     float32 `json:"y"`
		Size  float32 `json:"size"`
		Angle float32 `json:"angle"`
	} `json:"keypoints"`
	Descriptors [][]float32 `json:"descriptors"`
}

var importCmd = &cobra.Command{
	Use:   "import <name> <file.json>",
	Short: "Store a feature set read from a JSON file",
	Long: `Store a feature set read from a JSON file of the form

  {"keypoints": [{"x": 1, "y": 2, "size": 3, "angle": 0}, ...],
   "descriptors": [[0.1, 0.2, ...], ...]}

keypoints[i] must be the location of descriptors[i]. The new set id is
printed on stdout.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		features, err := readFeatures(args[1])
		if err != nil {
			return err
		}
		s, db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := s.Save(cmd.Context(), args[0], features)
		if err != nil {
			return err
		}
		logger.Info("imported", "id", id, "name", args[0], "features", features.Len(), "dim", features.Descriptors.Dim())
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func readFeatures(path string) (*descriptor.Features, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ff featureFile
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	f := &descriptor.Features{
		Keypoints:   make([]descriptor.Keypoint, len(ff.Keypoints)),
		Descriptors: make(descriptor.Set, len(ff.Descriptors)),
	}
	for i, kp := range ff.Keypoints {
		f.Keypoints[i] = descriptor.Keypoint{X: kp.X, Y: kp.Y, Size: kp.Size, Angle: kp.Angle}
	}
	for i, d := range ff.Descriptors {
		f.Descriptors[i] = d
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
