package db

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMfaProvider(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// test not found provider
	provider, err := testDB.MfaProvider(testZoneID, testProviderID)
	c.Assert(provider, qt.IsNil)
	c.Assert(err, qt.Equals, ErrNotFound)
	// create the provider and fetch it back
	c.Assert(testDB.CreateMfaProvider(testProvider(testProviderID, testProviderName, testZoneID)), qt.IsNil)
	provider, err = testDB.MfaProvider(testZoneID, testProviderID)
	c.Assert(err, qt.IsNil)
	c.Assert(provider.Name, qt.Equals, testProviderName)
	c.Assert(provider.IdentityZoneID, qt.Equals, testZoneID)
	// the same id under another zone must look absent
	provider, err = testDB.MfaProvider(testOtherZoneID, testProviderID)
	c.Assert(provider, qt.IsNil)
	c.Assert(err, qt.Equals, ErrNotFound)
	// a provider with a missing id or zone is rejected
	c.Assert(testDB.CreateMfaProvider(&MfaProvider{Name: "noid"}), qt.Equals, ErrInvalidData)
}

func TestCreateMfaProviderConflict(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// create a provider
	c.Assert(testDB.CreateMfaProvider(testProvider(testProviderID, testProviderName, testZoneID)), qt.IsNil)
	// a second provider with the same name in the same zone must conflict,
	// even with a different id
	err := testDB.CreateMfaProvider(testProvider("anotherId", testProviderName, testZoneID))
	c.Assert(err, qt.Equals, ErrAlreadyExists)
	// the same name in another zone must succeed
	c.Assert(testDB.CreateMfaProvider(testProvider("otherZoneId", testProviderName, testOtherZoneID)), qt.IsNil)
	// the original record must not have been overwritten
	provider, err := testDB.MfaProvider(testZoneID, testProviderID)
	c.Assert(err, qt.IsNil)
	c.Assert(provider.ID, qt.Equals, testProviderID)
}

func TestMfaProviderByName(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// test not found provider
	_, err := testDB.MfaProviderByName(testZoneID, testProviderName)
	c.Assert(err, qt.Equals, ErrNotFound)
	// create the provider and fetch it by name
	c.Assert(testDB.CreateMfaProvider(testProvider(testProviderID, testProviderName, testZoneID)), qt.IsNil)
	provider, err := testDB.MfaProviderByName(testZoneID, testProviderName)
	c.Assert(err, qt.IsNil)
	c.Assert(provider.ID, qt.Equals, testProviderID)
	// the name must not resolve under another zone
	_, err = testDB.MfaProviderByName(testOtherZoneID, testProviderName)
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestMfaProviders(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// empty zone lists nothing
	providers, err := testDB.MfaProviders(testZoneID)
	c.Assert(err, qt.IsNil)
	c.Assert(providers, qt.HasLen, 0)
	// create two providers in the zone and one in another zone
	c.Assert(testDB.CreateMfaProvider(testProvider("id1", "providerB", testZoneID)), qt.IsNil)
	c.Assert(testDB.CreateMfaProvider(testProvider("id2", "providerA", testZoneID)), qt.IsNil)
	c.Assert(testDB.CreateMfaProvider(testProvider("id3", "providerC", testOtherZoneID)), qt.IsNil)
	// the list is scoped by zone and sorted by name
	providers, err = testDB.MfaProviders(testZoneID)
	c.Assert(err, qt.IsNil)
	c.Assert(providers, qt.HasLen, 2)
	c.Assert(providers[0].Name, qt.Equals, "providerA")
	c.Assert(providers[1].Name, qt.Equals, "providerB")
	providers, err = testDB.MfaProviders(testOtherZoneID)
	c.Assert(err, qt.IsNil)
	c.Assert(providers, qt.HasLen, 1)
}

func TestUpdateMfaProvider(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	provider := testProvider(testProviderID, testProviderName, testZoneID)
	// updating a missing provider fails
	c.Assert(testDB.UpdateMfaProvider(provider), qt.Equals, ErrNotFound)
	c.Assert(testDB.CreateMfaProvider(provider), qt.IsNil)
	// update the config and check the modification date moved
	stored, err := testDB.MfaProvider(testZoneID, testProviderID)
	c.Assert(err, qt.IsNil)
	provider.Config.ProviderDescription = "updated description"
	c.Assert(testDB.UpdateMfaProvider(provider), qt.IsNil)
	updated, err := testDB.MfaProvider(testZoneID, testProviderID)
	c.Assert(err, qt.IsNil)
	c.Assert(updated.Config.ProviderDescription, qt.Equals, "updated description")
	c.Assert(updated.LastModified.After(stored.LastModified), qt.IsTrue)
	// an update scoped to the wrong zone must not touch the record
	wrongZone := testProvider(testProviderID, testProviderName, testOtherZoneID)
	c.Assert(testDB.UpdateMfaProvider(wrongZone), qt.Equals, ErrNotFound)
}

func TestDelMfaProvider(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// deleting a missing provider fails
	c.Assert(testDB.DelMfaProvider(testZoneID, testProviderID), qt.Equals, ErrNotFound)
	c.Assert(testDB.CreateMfaProvider(testProvider(testProviderID, testProviderName, testZoneID)), qt.IsNil)
	// a delete scoped to the wrong zone must not remove the record
	c.Assert(testDB.DelMfaProvider(testOtherZoneID, testProviderID), qt.Equals, ErrNotFound)
	// enroll a user and delete the provider, the credential must go with it
	c.Assert(testDB.SetMfaCredential(&MfaCredential{
		UserID:        testUserID,
		MfaProviderID: testProviderID,
		ZoneID:        testZoneID,
		SecretKey:     "JBSWY3DPEHPK3PXP",
	}), qt.IsNil)
	c.Assert(testDB.DelMfaProvider(testZoneID, testProviderID), qt.IsNil)
	_, err := testDB.MfaProvider(testZoneID, testProviderID)
	c.Assert(err, qt.Equals, ErrNotFound)
	_, err = testDB.MfaCredential(testUserID, testProviderID)
	c.Assert(err, qt.Equals, ErrNotFound)
}
