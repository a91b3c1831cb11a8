package db

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.vocdoni.io/dvote/log"
)

// initCollections creates the collections in the MongoDB database if they
// don't exist yet.
func (ms *MongoStorage) initCollections(database string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// get the current collections names to create only the missing ones
	currentCollections, err := ms.collectionNames(ctx, database)
	if err != nil {
		return err
	}
	// aux method to get a collection if it exists, or create it if it doesn't
	getCollection := func(name string) (*mongo.Collection, error) {
		alreadyCreated := false
		for _, c := range currentCollections {
			if c == name {
				alreadyCreated = true
				break
			}
		}
		if !alreadyCreated {
			if err := ms.DBClient.Database(database).CreateCollection(ctx, name); err != nil {
				return nil, err
			}
		}
		return ms.DBClient.Database(database).Collection(name), nil
	}
	// mfa providers collection
	if ms.mfaProviders, err = getCollection("mfaProviders"); err != nil {
		return err
	}
	// identity zones collection
	if ms.identityZones, err = getCollection("identityZones"); err != nil {
		return err
	}
	// mfa credentials collection
	if ms.mfaCredentials, err = getCollection("mfaCredentials"); err != nil {
		return err
	}
	return nil
}

// collectionNames returns the names of the collections in the given database.
func (ms *MongoStorage) collectionNames(ctx context.Context, database string) ([]string, error) {
	collectionsCursor, err := ms.DBClient.Database(database).ListCollections(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := collectionsCursor.Close(ctx); err != nil {
			log.Warnw("failed to close collections cursor", "error", err)
		}
	}()
	collections := []bson.D{}
	if err := collectionsCursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	names := []string{}
	for _, col := range collections {
		for _, v := range col {
			if v.Key == "name" {
				names = append(names, v.Value.(string))
			}
		}
	}
	return names, nil
}

// createIndexes creates the indexes for the collections in the MongoDB
// database. Add more indexes here as needed.
func (ms *MongoStorage) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	// create a unique index for the ('identityZoneId', 'name') tuple on mfa
	// providers, which backs the per-zone name uniqueness guarantee
	providerNameIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "identityZoneId", Value: 1}, // 1 for ascending order
			{Key: "name", Value: 1},           // 1 for ascending order
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := ms.mfaProviders.Indexes().CreateOne(ctx, providerNameIndex); err != nil {
		return fmt.Errorf("failed to create index on name for mfa providers: %w", err)
	}
	// create an index for the 'subdomain' field on identity zones (must be unique)
	zoneSubdomainIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "subdomain", Value: 1}}, // 1 for ascending order
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
	if _, err := ms.identityZones.Indexes().CreateOne(ctx, zoneSubdomainIndex); err != nil {
		return fmt.Errorf("failed to create index on subdomain for identity zones: %w", err)
	}
	// create a unique index for the ('userId', 'mfaProviderId') tuple on mfa
	// credentials
	credentialIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},        // 1 for ascending order
			{Key: "mfaProviderId", Value: 1}, // 1 for ascending order
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := ms.mfaCredentials.Indexes().CreateOne(ctx, credentialIndex); err != nil {
		return fmt.Errorf("failed to create index on user for mfa credentials: %w", err)
	}
	return nil
}

// dynamicUpdateDocument creates a BSON update document from a struct, including only non-zero fields.
// It uses reflection to iterate over the struct fields and create the update document.
// The struct fields must have a bson tag to be included in the update document.
// The _id field is skipped.
func dynamicUpdateDocument(item interface{}, alwaysUpdateTags []string) (bson.M, error) {
	val := reflect.ValueOf(item)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if !val.IsValid() || val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input must be a valid struct")
	}
	update := bson.M{}
	typ := val.Type()
	// create a map for quick lookup
	alwaysUpdateMap := make(map[string]bool, len(alwaysUpdateTags))
	for _, tag := range alwaysUpdateTags {
		alwaysUpdateMap[tag] = true
	}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() {
			continue
		}
		fieldType := typ.Field(i)
		tag := strings.Split(fieldType.Tag.Get("bson"), ",")[0]
		if tag == "" || tag == "-" || tag == "_id" {
			continue
		}
		// check if the field should always be updated or is not the zero value
		_, alwaysUpdate := alwaysUpdateMap[tag]
		if alwaysUpdate || !reflect.DeepEqual(field.Interface(), reflect.Zero(field.Type()).Interface()) {
			update[tag] = field.Interface()
		}
	}
	return bson.M{"$set": update}, nil
}
