package utils

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/ory/dockertest/v3"
	dbTypes "github.com/vietlabs/cryptotax/db"
	"gorm.io/gorm"
)

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func randResourceNameSuffix(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

type TestDockerDBConfig struct {
	GormDB   *gorm.DB
	Host     string
	Port     string
	Database string
	User     string
	Password string
	Clean    func()
}

// SetupTestDatabase starts a throwaway Postgres container and connects to it.
// The returned Clean func tears the container down.
func SetupTestDatabase() (*TestDockerDBConfig, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, err
	}

	err = pool.Client.Ping()
	if err != nil {
		return nil, err
	}

	databaseName := "test"
	user := "test"
	password := "test"

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       fmt.Sprintf("cryptotax-postgres-%s", randResourceNameSuffix(10)),
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			fmt.Sprintf("POSTGRES_USER=%s", user),
			fmt.Sprintf("POSTGRES_PASSWORD=%s", password),
			fmt.Sprintf("POSTGRES_DB=%s", databaseName),
		},
	})
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	host := resource.GetBoundIP("5432/tcp")
	port := resource.GetPort("5432/tcp")

	if err := pool.Retry(func() error {
		var err error
		db, err = dbTypes.PostgresDbConnect(host, port, databaseName, user, password, "silent")
		return err
	}); err != nil {
		return nil, err
	}

	clean := func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("Could not purge resource: %s", err)
		}
	}

	return &TestDockerDBConfig{
		GormDB:   db,
		Host:     host,
		Port:     port,
		Database: databaseName,
		User:     user,
		Password: password,
		Clean:    clean,
	}, nil
}
