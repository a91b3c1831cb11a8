package db

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/zoneid/mfa-backend/test"
)

var testDB *MongoStorage

// Common test constants
const (
	testZoneID        = "zone1"
	testZoneName      = "First Zone"
	testZoneSubdomain = "first"
	testOtherZoneID   = "zone2"
	testProviderID    = "provider123"
	testProviderName  = "corpTotp"
	testUserID        = "user123"
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	// start a MongoDB container for testing
	dbContainer, err := test.StartMongoContainer(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to start MongoDB container: %v", err))
	}

	// get the MongoDB connection string
	mongoURI, err := test.MongoURI(ctx, dbContainer)
	if err != nil {
		panic(fmt.Sprintf("failed to get MongoDB endpoint: %v", err))
	}

	testDB, err = New(mongoURI, test.RandomDatabaseName())
	if err != nil {
		panic(fmt.Sprintf("failed to create new MongoDB connection: %v", err))
	}

	code := m.Run()

	// close the database connection
	testDB.Close()

	// stop the MongoDB container
	if err := dbContainer.Terminate(ctx); err != nil {
		panic(fmt.Sprintf("failed to stop MongoDB container: %v", err))
	}

	os.Exit(code)
}

func testProvider(id, name, zoneID string) *MfaProvider {
	return &MfaProvider{
		ID:             id,
		Name:           name,
		Type:           TypeGoogleAuthenticator,
		IdentityZoneID: zoneID,
		Config: MfaProviderConfig{
			Issuer:      testZoneName,
			Digits:      6,
			StepSeconds: 30,
		},
	}
}
