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
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/optipuls/optipuls/InputParameters"
	"github.com/optipuls/optipuls/model_problems/LaserWelding"
)

func newLogger(level string) (log *logrus.Logger, err error) {
	var (
		lvl logrus.Level
	)
	if lvl, err = logrus.ParseLevel(level); err != nil {
		return
	}
	log = logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(lvl)
	return
}

// processInput loads the problem parameters and material named by the persistent flags
func processInput() (ip *InputParameters.InputParameters, mat *InputParameters.Material, err error) {
	var (
		data []byte
	)
	ip = InputParameters.DefaultInputParameters()
	if file := viper.GetString("inputConditionsFile"); file != "" {
		if data, err = ioutil.ReadFile(file); err != nil {
			return
		}
		if err = ip.Parse(data); err != nil {
			err = fmt.Errorf("parsing %s: %w", file, err)
			return
		}
	}
	if file := viper.GetString("materialFile"); file != "" {
		if data, err = ioutil.ReadFile(file); err != nil {
			return
		}
		if mat, err = InputParameters.ParseMaterial(data); err != nil {
			err = fmt.Errorf("parsing %s: %w", file, err)
			return
		}
	} else {
		mat = InputParameters.DefaultMaterial()
	}
	return
}

func newProblem() (p *LaserWelding.Problem, err error) {
	var (
		ip  *InputParameters.InputParameters
		mat *InputParameters.Material
		log *logrus.Logger
	)
	if ip, mat, err = processInput(); err != nil {
		return
	}
	if log, err = newLogger(viper.GetString("logLevel")); err != nil {
		return
	}
	if viper.GetBool("verbose") {
		ip.Print()
	}
	return LaserWelding.NewProblem(ip, mat, LaserWelding.WithLogger(log))
}

// parseControl reads a comma separated control of length nt, a single value fills every step
func parseControl(s string, nt int) (control []float64, err error) {
	fields := strings.Split(s, ",")
	if len(fields) == 1 {
		var val float64
		if val, err = strconv.ParseFloat(strings.TrimSpace(fields[0]), 64); err != nil {
			return
		}
		control = make([]float64, nt)
		for i := range control {
			control[i] = val
		}
		return
	}
	control = make([]float64, len(fields))
	for i, f := range fields {
		if control[i], err = strconv.ParseFloat(strings.TrimSpace(f), 64); err != nil {
			return nil, err
		}
	}
	return
}
