/*
Copyright © 2020 hit.zhangjie@gmail.com

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
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hitzhangjie/stopthread/pkg/logflags"
	"github.com/hitzhangjie/stopthread/pkg/session"
	"github.com/hitzhangjie/stopthread/pkg/target"
)

var cfgFile string

// errReported means the failure has already been printed.
var errReported = errors.New("reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stopthread [tid ...]",
	Short: "stop individual threads until interrupted",
	Long: `stopthread stops individual threads, not whole thread groups, and keeps
them stopped until it receives Ctrl-C or another terminating signal. The
threads then return to their original state.

SIGSTOP cannot do this: job control signals act on the whole thread group.
stopthread seizes each thread with ptrace and interrupts it instead.

Be careful:

1. Make sure the threads do not hold locks or other synchronisation
   primitives when stopped. Verify this using tracing first.
2. Services with admission control may need their limits raised to account
   for the stopped threads.
3. Services with I/O gating may need their limits raised for the work the
   stopped threads were classified as, to avoid throttling it.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logflags.Setup(viper.GetBool("log"), viper.GetString("log-output"), viper.GetString("log-dest"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := target.NewProcFS(viper.GetString("proc-root"))
		if err != nil {
			logflags.SessionLogger().WithError(err).Warn("procfs unavailable, own threads are not detected")
			fs = nil
		}

		sess := session.New(session.Options{
			Procfs:   fs,
			Confirm:  viper.GetBool("confirm"),
			Describe: viper.GetBool("describe"),
			Signals:  []os.Signal{os.Interrupt, syscall.SIGTERM},
			Stdout:   cmd.OutOrStdout(),
			Stderr:   cmd.ErrOrStderr(),
		}).AtExit(logflags.Close)

		if err := sess.Run(cmd.Context(), args); err != nil {
			return errReported
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if err != errReported {
			fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stopthread.yaml)")
	pf.Bool("log", false, "enable logging")
	pf.String("log-output", "", "comma separated list of components that should produce logs: tracer, session, procfs")
	pf.String("log-dest", "", "write logs to the specified file instead of stderr")
	pf.String("proc-root", target.DefaultProcRoot, "procfs mount point")
	pf.MarkHidden("proc-root")

	rootCmd.Flags().Bool("confirm", false, "ask before stopping each thread")
	rootCmd.Flags().Bool("describe", false, "show command name and state of each stopped thread")

	viper.BindPFlags(pf)
	viper.BindPFlags(rootCmd.Flags())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err == nil {
			// Search config in home directory with name ".stopthread" (without extension).
			viper.AddConfigPath(home)
			viper.SetConfigName(".stopthread")
		}
	}

	viper.SetEnvPrefix("stopthread")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "config file error: %v\n", err)
			os.Exit(1)
		}
	}
}
