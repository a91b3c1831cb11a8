package db

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetMfaCredential method stores the enrollment state of a user against a
// provider. Re-enrollment replaces the previous secret and resets the last
// used step.
func (ms *MongoStorage) SetMfaCredential(credential *MfaCredential) error {
	if credential.UserID == "" || credential.MfaProviderID == "" {
		return ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"userId": credential.UserID, "mfaProviderId": credential.MfaProviderID}
	opts := options.Replace().SetUpsert(true)
	if _, err := ms.mfaCredentials.ReplaceOne(ctx, filter, credential, opts); err != nil {
		if strings.Contains(err.Error(), "duplicate key error") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// MfaCredential method returns the enrollment state of a user against a
// provider. If the user is not enrolled, it returns ErrNotFound.
func (ms *MongoStorage) MfaCredential(userID, providerID string) (*MfaCredential, error) {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := ms.mfaCredentials.FindOne(ctx, bson.M{"userId": userID, "mfaProviderId": providerID})
	credential := &MfaCredential{}
	if err := result.Decode(credential); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return credential, nil
}

// ConsumeMfaCredentialStep method records that a code for the given time step
// was accepted. The update is conditional on the stored step being lower than
// the given one, so a resubmission of a code for an already consumed step
// observes ErrAlreadyExists. The check and the write are a single filtered
// update, never a check-then-write race.
func (ms *MongoStorage) ConsumeMfaCredentialStep(userID, providerID string, step uint64) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{
		"userId":        userID,
		"mfaProviderId": providerID,
		"lastUsedStep":  bson.M{"$lt": step},
	}
	updateDoc := bson.M{"$set": bson.M{"lastUsedStep": step}}
	result, err := ms.mfaCredentials.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// distinguish a missing credential from a consumed step
		if err := ms.mfaCredentials.FindOne(ctx,
			bson.M{"userId": userID, "mfaProviderId": providerID}).Err(); err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return ErrAlreadyExists
	}
	return nil
}

// DelMfaCredential method removes the enrollment of a user against a
// provider. If the user is not enrolled, it returns ErrNotFound.
func (ms *MongoStorage) DelMfaCredential(userID, providerID string) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := ms.mfaCredentials.DeleteOne(ctx, bson.M{"userId": userID, "mfaProviderId": providerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
