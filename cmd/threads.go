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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hitzhangjie/stopthread/pkg/target"
)

// threadsCmd represents the threads command
var threadsCmd = &cobra.Command{
	Use:   "threads <pid>",
	Short: "list the threads of a process",
	Long:  `List the threads of a process with their state and command name, to pick the tids to stop.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := target.ParseTid(args[0])
		if err != nil {
			return err
		}

		fs, err := target.NewProcFS(viper.GetString("proc-root"))
		if err != nil {
			return err
		}
		threads, err := fs.Threads(int(pid))
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "TID\tSTATE\tCOMM")
		for _, th := range threads {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", th.Tid, th.State, th.Comm)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(threadsCmd)
}
