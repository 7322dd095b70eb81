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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optipuls/optipuls/model_problems/LaserWelding"
)

// ForwardCmd represents the forward command
var ForwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Simulate the temperature for a given control",
	Long: `
Integrates the heat equation for the control and reports the temperature at the target point,
the peak temperature of each step against the solidus and liquidus, the melt pool with its
front velocity (marked ! above VelocityMax) and latent heat, and the cost.

optipuls forward -I problem.yaml --control 1,1,0.5,0`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			p       *LaserWelding.Problem
			control []float64
			evo     LaserWelding.Evolution
			pools   []LaserWelding.MeltPool
		)
		if p, err = newProblem(); err != nil {
			return
		}
		ip := p.Params()
		cs, _ := cmd.Flags().GetString("control")
		if control, err = parseControl(cs, ip.Nt); err != nil {
			return
		}
		if evo, err = p.SolveForward(control, p.InitialState()); err != nil {
			return
		}
		if pools, err = p.MeltHistory(evo); err != nil {
			return
		}
		fmt.Printf("%4s %12s %14s %14s %8s %12s %12s %12s\n", "k", "t", "target", "max", "state", "pool radius", "velocity", "latent heat")
		for k := 0; k < evo.Len(); k++ {
			var (
				field = evo.Step(k)
				peak  = field[0]
				state = "solid"
			)
			for _, v := range field {
				peak = max(peak, v)
			}
			switch {
			case peak >= ip.Liquidus:
				state = "melt"
			case peak >= ip.Solidus:
				state = "mushy"
			}
			flag := ""
			if pools[k].Exceeded {
				flag = " !"
			}
			fmt.Printf("%4d %12.4e %14.6f %14.6f %8s %12.4e %12.4e %12.4e%s\n", k, float64(k)*ip.Dt(), p.TargetValue(field), peak, state,
				pools[k].Radius, pools[k].Velocity, pools[k].LatentHeat, flag)
		}
		fmt.Printf("J = %.10e\n", p.Cost(evo, control))
		return
	},
}

func init() {
	rootCmd.AddCommand(ForwardCmd)
	ForwardCmd.Flags().StringP("control", "c", "1", "control, one value or a comma separated list of Nt values")
}
