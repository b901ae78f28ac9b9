package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/buildlayout/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file" type:"path"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	// With --output the config goes there as buildlayout.yaml.
	if i.Output != "" {
		return RunInit(filepath.Join(i.Output, config.DefaultConfigFile), i.Force)
	}
	return RunInit(root.Config, i.Force)
}

func RunInit(configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	fmt.Println("initialized successfully")
	return nil
}
