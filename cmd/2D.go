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
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/macflow/macflow/InputParameters"
	"github.com/macflow/macflow/model_problems/SemiLagrangian2D"
)

type Sim2D struct {
	ConfigFile string
	Graph      bool
	Delay      time.Duration
	Profile    bool
}

// TwoDCmd represents the 2D command
var TwoDCmd = &cobra.Command{
	Use:   "2D",
	Short: "Two dimensional incompressible flow solver on a staggered MAC grid",
	Long: `
Runs the pressure-projection / semi-Lagrangian solver described by a YAML or
JSON configuration file,

macflow 2D -c config.json`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("2D called")
		m2d := &Sim2D{}
		if m2d.ConfigFile, err = cmd.Flags().GetString("config"); err != nil {
			panic(err)
		}
		m2d.Graph, _ = cmd.Flags().GetBool("graph")
		m2d.Profile, _ = cmd.Flags().GetBool("profile")
		dr, _ := cmd.Flags().GetInt("delay")
		m2d.Delay = time.Duration(dr) * time.Millisecond
		ip := processInput(m2d)
		Run2D(m2d, ip)
	},
}

func processInput(m2d *Sim2D) (ip *InputParameters.SimParameters2D) {
	var (
		err error
	)
	if len(m2d.ConfigFile) == 0 {
		fmt.Printf("error: must supply a configuration file (-c, --config)\n")
		exampleFile := `
{
  "nx": 64, "ny": 64,
  "dx": 0.01, "dy": 0.01,
  "dt": 1e-4, "nt": 100,
  "density": 1000.0,
  "sampling_rate": 10,
  "folder": "results",
  "write_u": true, "write_v": true, "write_p": true,
  "solver": { "type": "red_black_gauss_seidel", "max_iterations": 1000, "tolerance": 1e-3 },
  "velocityu": { "rectangle": { "val": 1.0, "x1": 0, "y1": 0, "x2": "nx", "y2": "ny" } },
  "solid": { "cylinder": { "x": "nx/4", "y": "ny/2", "r": "ny/8" } }
}
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = ioutil.ReadFile(m2d.ConfigFile); err != nil {
		fmt.Printf("error: unable to read %s: %s\n", m2d.ConfigFile, err.Error())
		os.Exit(1)
	}
	ip = InputParameters.NewSimParameters2D()
	if err = ip.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

func init() {
	rootCmd.AddCommand(TwoDCmd)
	TwoDCmd.Flags().StringP("config", "c", "", "YAML or JSON simulation configuration file")
	TwoDCmd.Flags().BoolP("graph", "g", false, "display a graph while computing solution")
	TwoDCmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
	TwoDCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

func Run2D(m2d *Sim2D, ip *InputParameters.SimParameters2D) {
	if m2d.Profile {
		defer profile.Start().Stop()
	}
	ip.Print()

	c, err := SemiLagrangian2D.NewSemiLagrangian(ip)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if err = c.Run(m2d.Graph, m2d.Delay); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(2)
	}
	if c.WriteFailures() > 0 {
		fmt.Fprintf(os.Stderr, "error: %d output writes failed\n", c.WriteFailures())
		os.Exit(2)
	}
}
