package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/testdb"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Start a disposable MariaDB with the Tuskfish tables and print the DB_* settings to reach it.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to a .env file providing DB_IMAGE, DB_DATABASE, DB_USER and DB_PASSWORD

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		logging.Info().Str("file", envFilename).Msg("Loading environment variables")
		if err := godotenv.Load(envFilename); err != nil {
			logging.Fatal().Err(err).Msg("Failed to load environment variables")
		}
	}

	ctx := context.Background()
	m, err := testdb.StartMariaDB(ctx, testdb.Options{
		Image:    os.Getenv("DB_IMAGE"),
		Database: os.Getenv("DB_DATABASE"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create test container")
	}

	fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\n",
		m.Config.DBType, m.Config.DBHost, m.Config.DBPort, m.Config.DBDatabase, m.Config.DBUser, m.Config.DBPassword)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-sigs

	logging.Info().Str("signal", sig.String()).Msg("Terminating test container")
	m.Terminate(ctx)
}
