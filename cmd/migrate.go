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

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/pizzahunt/pizzahunt/database"
)

func migrateCommands(app *pizzaHuntInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "run pizza hunt postgres migrations",
	}

	cmd.AddCommand(migrateDirectionCommand(app, "up", migrate.Up))
	cmd.AddCommand(migrateDirectionCommand(app, "down", migrate.Down))

	return cmd
}

func migrateDirectionCommand(app *pizzaHuntInstance, use string, direction migrate.MigrationDirection) *cobra.Command {
	return &cobra.Command{
		Use: use,
		Run: func(cmd *cobra.Command, args []string) {
			db, err := database.ConnectDB(app.cnf.DataSource.Dns)
			if err != nil {
				log.Printf("Error connecting to database: %v", err)
				return
			}
			defer db.Close()

			n, err := database.Migrate(db, direction)
			if err != nil {
				log.Printf("Error migrating %s: %v", use, err)
				return
			}

			if direction == migrate.Up {
				fmt.Printf("Applied %d migrations!\n", n)
			} else {
				fmt.Printf("Rolled back %d migrations!\n", n)
			}
		},
	}
}
