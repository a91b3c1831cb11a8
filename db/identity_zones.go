package db

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IdentityZone method returns the identity zone with the given id. If the
// zone doesn't exist, it returns ErrNotFound.
func (ms *MongoStorage) IdentityZone(id string) (*IdentityZone, error) {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := ms.identityZones.FindOne(ctx, bson.M{"_id": id})
	zone := &IdentityZone{}
	if err := result.Decode(zone); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return zone, nil
}

// IdentityZoneBySubdomain method returns the identity zone served under the
// given subdomain. If no zone claims the subdomain, it returns ErrNotFound.
func (ms *MongoStorage) IdentityZoneBySubdomain(subdomain string) (*IdentityZone, error) {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := ms.identityZones.FindOne(ctx, bson.M{"subdomain": subdomain})
	zone := &IdentityZone{}
	if err := result.Decode(zone); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return zone, nil
}

// SetIdentityZone method creates or updates the identity zone in the
// database. A new zone with an already claimed subdomain is rejected with
// ErrAlreadyExists.
func (ms *MongoStorage) SetIdentityZone(zone *IdentityZone) error {
	if zone.ID == "" {
		return ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updateDoc, err := dynamicUpdateDocument(zone, []string{"active"})
	if err != nil {
		return err
	}
	opts := options.Update().SetUpsert(true)
	if _, err := ms.identityZones.UpdateOne(ctx, bson.M{"_id": zone.ID}, updateDoc, opts); err != nil {
		if strings.Contains(err.Error(), "duplicate key error") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SetZoneMfaConfig method updates the MFA policy of an existing zone. If the
// zone doesn't exist, it returns ErrNotFound.
func (ms *MongoStorage) SetZoneMfaConfig(zoneID string, config *ZoneMfaConfig) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": zoneID}
	updateDoc := bson.M{"$set": bson.M{"mfaConfig": config}}
	result, err := ms.identityZones.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
