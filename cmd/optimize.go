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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/optipuls/optipuls/model_problems/LaserWelding"
	"github.com/optipuls/optipuls/utils"
)

// OptimizeCmd represents the optimize command
var OptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize the laser power by projected gradient descent",
	Long: `
Runs gradient descent on the control box [0,1] from the initial control until the gradient
norm falls below the tolerance, the iteration limit is reached or the run is interrupted.

optipuls optimize -I problem.yaml --control 0 --iterations 10`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			p       *LaserWelding.Problem
			control []float64
			records []LaserWelding.IterationRecord
		)
		if p, err = newProblem(); err != nil {
			return
		}
		ip := p.Params()
		cs, _ := cmd.Flags().GetString("control")
		if control, err = parseControl(cs, ip.Nt); err != nil {
			return
		}
		iterations, _ := cmd.Flags().GetInt("iterations")
		if iterations < 0 {
			iterations = ip.IterMax
		}
		step, _ := cmd.Flags().GetFloat64("step")
		if step <= 0 {
			step = ip.StepInit
		}
		// An interrupt ends the descent at the next iteration with the records so far
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		records, err = p.Optimize(ctx, control, p.InitialState(), iterations, step)
		PrintRecords(records)
		if err != nil {
			return
		}
		if len(records) != 0 {
			fmt.Printf("control = %v\n", records[len(records)-1].Control)
		}
		fmt.Println(utils.GetMemUsage())
		return
	},
}

func PrintRecords(records []LaserWelding.IterationRecord) {
	fmt.Printf("%4s %12s %16s %16s\n", "i", "s", "j", "norm")
	for _, rec := range records {
		var note string
		if rec.Stalled {
			note = " line search stalled"
		}
		fmt.Printf("%4d %12.4e %16.8e %16.8e%s\n", rec.Iteration, rec.Step, rec.Cost, rec.GradNorm, note)
	}
}

func init() {
	rootCmd.AddCommand(OptimizeCmd)
	OptimizeCmd.Flags().StringP("control", "c", "0", "initial control, one value or a comma separated list of Nt values")
	OptimizeCmd.Flags().IntP("iterations", "n", -1, "maximum number of descent iterations, IterMax from the input file when negative")
	OptimizeCmd.Flags().Float64P("step", "s", 0, "initial line search step, StepInit from the input file when zero")
}
