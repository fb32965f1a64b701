package stages

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/voxpipe/voxpipe/pkg/pipeline"
	"github.com/voxpipe/voxpipe/pkg/pipeline/model"
)

// Subprocess delegates a stage to an external command, injecting the input
// and output manifest paths through the configured flags. The command's own
// flags stay untouched; the manifest paths must not already appear in the
// template, otherwise the injected arguments would collide.
//
// A non-zero exit status fails the stage.
type Subprocess struct {
	info         *model.StageInfo
	cmd          string
	inputArg     string
	outputArg    string
	argSeparator string
}

// NewSubprocess validates the command template and builds the stage.
func NewSubprocess(id, inputManifest, outputManifest, cmd, inputArg, outputArg, argSeparator string) (*Subprocess, error) {
	if strings.TrimSpace(cmd) == "" {
		return nil, pipeline.NewConfigurationError(id, "cmd is required")
	}
	if argSeparator != "=" && argSeparator != " " {
		return nil, pipeline.NewConfigurationError(id, "arg_separator must be %q or %q", "=", " ")
	}
	if inputManifest != "" && strings.Contains(cmd, inputManifest) {
		return nil, pipeline.NewConfigurationError(id, "input manifest path must not appear in cmd")
	}
	if outputManifest != "" && strings.Contains(cmd, outputManifest) {
		return nil, pipeline.NewConfigurationError(id, "output manifest path must not appear in cmd")
	}

	return &Subprocess{
		info: &model.StageInfo{
			Type:           model.ManifestStageType,
			Name:           id,
			InputManifest:  inputManifest,
			OutputManifest: outputManifest,
		},
		cmd:          cmd,
		inputArg:     inputArg,
		outputArg:    outputArg,
		argSeparator: argSeparator,
	}, nil
}

func (s *Subprocess) Info() *model.StageInfo { return s.info }

func (s *Subprocess) Run(ctx context.Context) (model.StageStats, error) {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(s.info.OutputManifest), 0o755); err != nil {
		return model.StageStats{}, errors.Wrap(err, "unable to create output directory")
	}

	args := strings.Fields(s.cmd)
	if s.argSeparator == " " {
		if s.inputArg != "" {
			args = append(args, s.inputArg, s.info.InputManifest)
		}
		if s.outputArg != "" {
			args = append(args, s.outputArg, s.info.OutputManifest)
		}
	} else {
		if s.inputArg != "" {
			args = append(args, s.inputArg+s.argSeparator+s.info.InputManifest)
		}
		if s.outputArg != "" {
			args = append(args, s.outputArg+s.argSeparator+s.info.OutputManifest)
		}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return model.StageStats{}, errors.Wrapf(err, "external command %q failed", args[0])
	}

	return model.StageStats{Elapsed: time.Since(start)}, nil
}

func newSubprocessStage(cfg Config) (pipeline.Stage, error) {
	params := struct {
		Cmd               string `yaml:"cmd"`
		InputManifestArg  string `yaml:"input_manifest_arg"`
		OutputManifestArg string `yaml:"output_manifest_arg"`
		ArgSeparator      string `yaml:"arg_separator"`
	}{}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if params.ArgSeparator == "" {
		params.ArgSeparator = "="
	}
	return NewSubprocess(cfg.id(), cfg.InputManifest, cfg.OutputManifest, params.Cmd, params.InputManifestArg, params.OutputManifestArg, params.ArgSeparator)
}
