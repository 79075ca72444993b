/*
 *  Copyright 2025 qitoi
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

package main

import (
	"os"

	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	var taskPath string
	var help bool

	pflag.StringVarP(&configPath, "config", "c", "./config.yaml", "config file")
	pflag.StringVarP(&taskPath, "task", "t", "", "run a single task from a JSON file and exit")
	pflag.BoolVarP(&help, "help", "h", false, "help")

	pflag.Parse()

	if help {
		pflag.Usage()
		os.Exit(0)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		fatal("load config error", err)
	}
	if err := CheckValidConfig(config); err != nil {
		fatal("invalid config", err)
	}

	c := Command{Config: config}

	if taskPath != "" {
		if err := c.RunTask(taskPath); err != nil {
			fatal("task error", err)
		}
		os.Exit(0)
	}

	if !config.Server.Enabled {
		fatal("nothing to do", errServerDisabled)
	}
	if err := c.Serve(); err != nil {
		fatal("server error", err)
	}
	os.Exit(0)
}

func fatal(msg string, err error) {
	os.Stderr.WriteString(msg + ": " + err.Error() + "\n")
	os.Exit(1)
}
