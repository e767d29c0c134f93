/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/adbinterp/logging"
)

// app carries the state shared by the sub commands of one root
type app struct {
	cfgFile string
	envFile string
	v       *viper.Viper
	log     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop()}
	rootCmd := &cobra.Command{
		Use:   "adbinterp",
		Short: "Transfer surface solutions between meshes",
		Long: `
Interpolates an aerodynamic surface solution (pressure coefficients and the
other carried fields) from a source surface mesh onto a target surface mesh,
for example from a CFD surface onto a structural model.

adbinterp interp -S cfd.su2 -T fem.su2 -O loads.su2`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.adbinterp.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env", ".env", "dotenv file read before the environment")
	rootCmd.AddCommand(newInterpCmd(a), newInspectCmd(a))
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in the dotenv file, the config file and ENV variables, then
// builds the logger
func (a *app) initConfig(logOutput io.Writer) (err error) {
	if a.envFile != "" {
		if err = godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", a.envFile, err)
		}
	}
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		var home string
		if home, err = homedir.Dir(); err != nil {
			return
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".adbinterp")
	}
	a.v.SetEnvPrefix("ADBINTERP")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err = a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	var lc logging.Config
	if lc, err = logging.ConfigFromEnv(); err != nil {
		return
	}
	lc.Output = logOutput
	if a.log, err = logging.NewLogger(lc); err != nil {
		return
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug().Str("file", used).Msg("using config file")
	}
	return nil
}
