// Package test provides testing utilities for the mfa-backend service,
// including the MongoDB test container used by the db package tests.
package test

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MongoPort is the port exposed by the MongoDB test container.
const MongoPort = "27017"

// StartMongoContainer starts a MongoDB container for testing the storage
// layer. It returns the container and any error encountered during startup.
// The container runs a single-node replica set so that transactions work.
func StartMongoContainer(ctx context.Context) (testcontainers.Container, error) {
	mongoPort := fmt.Sprintf("%s/tcp", MongoPort)
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:7",
				ExposedPorts: []string{mongoPort},
				Cmd:          []string{"--replSet", "rs0"},
				WaitingFor:   wait.ForListeningPort(MongoPort),
				LifecycleHooks: []testcontainers.ContainerLifecycleHooks{{
					PostStarts: []testcontainers.ContainerHook{
						func(ctx context.Context, c testcontainers.Container) error {
							// initialize the single node replica set
							_, _, err := c.Exec(ctx, []string{
								"mongosh", "--eval", "rs.initiate()",
							})
							return err
						},
					},
				}},
			},
			Started: true,
		})
}

// MongoURI returns the connection string of the given MongoDB container.
func MongoURI(ctx context.Context, container testcontainers.Container) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, nat.Port(MongoPort))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port()), nil
}

// RandomDatabaseName returns a random database name, so that test packages
// sharing a container never collide.
func RandomDatabaseName() string {
	return fmt.Sprintf("mfatest%d", rand.New(rand.NewSource(time.Now().UnixNano())).Uint32())
}
