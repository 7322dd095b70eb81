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
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/optipuls/optipuls/model_problems/LaserWelding"
)

// GradTestCmd represents the gradtest command
var GradTestCmd = &cobra.Command{
	Use:   "gradtest",
	Short: "Compare the adjoint gradient with finite differences of the cost",
	Long: `
Evaluates the directional derivative of the cost along a seeded random direction and compares
it with forward or central finite differences for a halving sequence of epsilons.

optipuls gradtest -I problem.yaml --control 0.5 --mode central -n 10`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			p       *LaserWelding.Problem
			control []float64
			mode    LaserWelding.DiffMode
			gc      *LaserWelding.GradientCheck
		)
		if p, err = newProblem(); err != nil {
			return
		}
		cs, _ := cmd.Flags().GetString("control")
		if control, err = parseControl(cs, p.Nt()); err != nil {
			return
		}
		ms, _ := cmd.Flags().GetString("mode")
		if mode, err = LaserWelding.NewDiffMode(ms); err != nil {
			return
		}
		n, _ := cmd.Flags().GetInt("n")
		eps, _ := cmd.Flags().GetFloat64("eps")
		if gc, err = p.Verify(context.Background(), control, n, mode, eps); err != nil {
			return
		}
		orders := gc.Orders()
		fmt.Printf("%16s%16s%16s%16s%16s%8s\n", "epsilon", "(Dj,direction)", "finite diff", "absolute error", "relative error", "order")
		for k, e := range gc.Epsilons {
			fmt.Printf("%16.8e%16.8e%16.8e%16.8e%16.8e%8.3f\n", e, gc.Directional, gc.FiniteDiff[k], gc.AbsErr[k], gc.RelErr[k], orders[k])
		}
		if csvFile, _ := cmd.Flags().GetString("csvFile"); csvFile != "" {
			err = writeGradientCheck(csvFile, gc)
		}
		return
	},
}

func writeGradientCheck(file string, gc *LaserWelding.GradientCheck) (err error) {
	var (
		f      *os.File
		orders = gc.Orders()
		ff     = func(x float64) string { return strconv.FormatFloat(x, 'e', 10, 64) }
	)
	if f, err = os.Create(file); err != nil {
		return
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err = w.Write([]string{"mode", "epsilon", "directional", "finite diff", "abs err", "rel err", "order"}); err != nil {
		return
	}
	for k, e := range gc.Epsilons {
		rec := []string{gc.Mode.String(), ff(e), ff(gc.Directional), ff(gc.FiniteDiff[k]), ff(gc.AbsErr[k]), ff(gc.RelErr[k]), ff(orders[k])}
		if err = w.Write(rec); err != nil {
			return
		}
	}
	w.Flush()
	return w.Error()
}

func init() {
	rootCmd.AddCommand(GradTestCmd)
	GradTestCmd.Flags().StringP("control", "c", "0.5", "control to test at, one value or a comma separated list of Nt values")
	GradTestCmd.Flags().String("mode", "forward", "finite difference mode: forward or central")
	GradTestCmd.Flags().Int("n", 15, "number of epsilon halvings")
	GradTestCmd.Flags().Float64("eps", 0.1, "initial epsilon")
	GradTestCmd.Flags().String("csvFile", "", "also write the table to this CSV file")
}
