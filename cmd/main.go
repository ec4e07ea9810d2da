/*
Copyright 2024 Pizza Hunt Authors.

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

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pizzahunt/pizzahunt"
	"github.com/pizzahunt/pizzahunt/config"
	"github.com/pizzahunt/pizzahunt/database"
	"github.com/pizzahunt/pizzahunt/internal/notification"
)

// PizzaHuntCLI wraps the root cobra command.
type PizzaHuntCLI struct {
	cmd *cobra.Command
}

// pizzaHuntInstance is shared by every command. The service is only built by the
// commands that talk to the datasource; the order commands run without one.
type pizzaHuntInstance struct {
	pizzaHunt *pizzahunt.PizzaHunt
	cnf       *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration before any command runs.
func preRun(app *pizzaHuntInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		app.cnf = cnf
		return nil
	}
}

// service connects the datasource on first use. Failing to connect is fatal.
func (app *pizzaHuntInstance) service() *pizzahunt.PizzaHunt {
	if app.pizzaHunt != nil {
		return app.pizzaHunt
	}

	p, err := setupPizzaHunt(app.cnf)
	if err != nil {
		notification.NotifyError(err)
		log.Fatal(err)
	}
	app.pizzaHunt = p
	return p
}

func setupPizzaHunt(cfg *config.Configuration) (*pizzahunt.PizzaHunt, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	p, err := pizzahunt.NewPizzaHunt(db)
	if err != nil {
		return nil, fmt.Errorf("error creating pizza hunt: %v", err)
	}
	return p, nil
}

func NewCLI() *PizzaHuntCLI {
	var configFile string
	app := &pizzaHuntInstance{}

	var rootCmd = &cobra.Command{
		Use:   "pizzahunt",
		Short: "Pizza ordering server and offline-first order client",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./pizzahunt.json", "Configuration file for pizza hunt")
	rootCmd.PersistentPreRunE = preRun(app, &configFile)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(workerCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(configCommands(app))
	rootCmd.AddCommand(orderCommands(app))

	return &PizzaHuntCLI{cmd: rootCmd}
}

func (c PizzaHuntCLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
