package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.vocdoni.io/dvote/log"
)

// CreateMfaProvider method inserts the provider in the database. The insert is
// conditional on the ('identityZoneId', 'name') unique index, so a concurrent
// creator with the same name in the same zone observes ErrAlreadyExists
// instead of overwriting the record. If an error occurs, it returns the error.
func (ms *MongoStorage) CreateMfaProvider(provider *MfaProvider) error {
	if provider.ID == "" || provider.IdentityZoneID == "" {
		return ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := ms.mfaProviders.InsertOne(ctx, provider); err != nil {
		if strings.Contains(err.Error(), "duplicate key error") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// MfaProvider method returns the provider with the given id in the given
// zone. A record that belongs to another zone is reported as ErrNotFound, the
// same as a record that doesn't exist.
func (ms *MongoStorage) MfaProvider(zoneID, id string) (*MfaProvider, error) {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := ms.mfaProviders.FindOne(ctx, bson.M{"_id": id, "identityZoneId": zoneID})
	provider := &MfaProvider{}
	if err := result.Decode(provider); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return provider, nil
}

// MfaProviderByName method returns the provider with the given name in the
// given zone. If the provider doesn't exist in that zone, it returns
// ErrNotFound.
func (ms *MongoStorage) MfaProviderByName(zoneID, name string) (*MfaProvider, error) {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := ms.mfaProviders.FindOne(ctx, bson.M{"name": name, "identityZoneId": zoneID})
	provider := &MfaProvider{}
	if err := result.Decode(provider); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return provider, nil
}

// MfaProviders method returns every provider of the given zone. The filter is
// always scoped by zone, so no cross-zone enumeration is possible through this
// method.
func (ms *MongoStorage) MfaProviders(zoneID string) ([]MfaProvider, error) {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	providers := []MfaProvider{}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := ms.mfaProviders.Find(ctx, bson.M{"identityZoneId": zoneID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			log.Warnw("error closing cursor", "error", err)
		}
	}()
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// UpdateMfaProvider method replaces the config of an existing provider and
// bumps its last modification date. The identity zone of a provider is
// immutable, so the filter is scoped by zone as well. If the provider doesn't
// exist in the zone, it returns ErrNotFound.
func (ms *MongoStorage) UpdateMfaProvider(provider *MfaProvider) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": provider.ID, "identityZoneId": provider.IdentityZoneID}
	updateDoc := bson.M{"$set": bson.M{
		"config":       provider.Config,
		"lastModified": time.Now(),
	}}
	result, err := ms.mfaProviders.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DelMfaProvider method deletes the provider with the given id from the given
// zone, along with the credentials enrolled against it. If the provider
// doesn't exist in the zone, it returns ErrNotFound.
func (ms *MongoStorage) DelMfaProvider(zoneID, id string) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Execute the operation within a transaction
	err := ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := ms.mfaProviders.DeleteOne(sessCtx, bson.M{"_id": id, "identityZoneId": zoneID})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return ErrNotFound
		}
		// remove the credentials enrolled against the deleted provider
		if _, err := ms.mfaCredentials.DeleteMany(sessCtx, bson.M{"mfaProviderId": id}); err != nil {
			return err
		}
		return nil
	})
	// unwrap the sentinel from the transaction error
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return err
}
