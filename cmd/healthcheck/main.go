// main.go
//
// Content query, tagging and routing layer for the Tuskfish CMS data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of tuskfish.
// tuskfish is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// tuskfish is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with tuskfish.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/localnerve/tuskfish/internal/config"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Connect(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	tf, err := database.New(db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load schema")
	}

	result := services.HealthCheck(context.Background(), cfg, tf)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to marshal health check result")
	}
	fmt.Println(string(output))

	if result.Status != "healthy" {
		os.Exit(1)
	}
}
