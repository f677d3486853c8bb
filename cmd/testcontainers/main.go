// main.go
//
// A versioned paper submission and peer-review workflow service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of paperdb.
// paperdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// paperdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with paperdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/paperdb/tests/helpers"
)

const usage = `
Start the paperdb service with its database, redis and Authorizer in
testcontainers, and keep them running until interrupted.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-store]

ENV_FILE_PATH: path to the .env file
-store:        start only the database and redis containers

example
  testcontainers -f /path/to/something/.env
  DB_TYPE=mariadb testcontainers -store
`

func main() {
	var showHelp, storeOnly bool
	var envFilename string
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.BoolVar(&storeOnly, "store", false, "start only the store containers")
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	started := make(chan *helpers.TestContainers, 1)
	go func() {
		var tc *helpers.TestContainers
		var err error
		if storeOnly {
			dbType := os.Getenv("DB_TYPE")
			if dbType == "" {
				dbType = "postgres"
			}
			tc, err = helpers.CreateStoreContainers(nil, dbType)
		} else {
			tc, err = helpers.CreateAllTestContainers(nil)
		}
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}
		started <- tc
	}()

	var tc *helpers.TestContainers
	for tc == nil {
		select {
		case tc = <-started:
			log.Printf("Database %s at %s:%s/%s\n", tc.DB.Type, tc.DB.Host, tc.DB.Port, tc.DB.Database)
			log.Printf("Redis at %s\n", tc.RedisAddr)
			if tc.BaseURL != "" {
				log.Printf("paperdb at %s, Authorizer at %s\n", tc.BaseURL, tc.AuthzURL)
			}
		case sig := <-sigs:
			log.Printf("\nReceived signal: %v before startup finished, exiting\n", sig)
			return
		}
	}

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	tc.Terminate(nil)
}
