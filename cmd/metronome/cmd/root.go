package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metronome",
		Short: "metronome runs calibrated micro, pico and macro benchmarks.",
		Long: `metronome runs calibrated micro, pico and macro benchmarks.

Persistent config can be saved in a config file so it doesn't have to be
specified every command.

Example structure:
trials: 3
measurements: 200
uploadUrl: http://localhost:8080

The location of this file can be passed in using the --config argument.
If not provided, $HOME/.metronome.yaml is used.`,
	}

	cmd.PersistentFlags().String("config", "", "config file (default is $HOME/.metronome.yaml)")

	cmd.AddCommand(
		runCmd(),
		listCmd(),
		versionCmd(),
	)

	return cmd
}

// initConfig merges the config file and matching environment variables into
// viper. Flags stay authoritative: a flag set on the command line wins over
// the file, the file wins over the flag default.
func initConfig(cmd *cobra.Command) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "finding home directory")
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".metronome")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.MergeInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			// No config file is fine; everything has a flag default.
		default:
			return errors.Wrapf(err, "reading config file %s", viper.ConfigFileUsed())
		}
	}
	return nil
}
