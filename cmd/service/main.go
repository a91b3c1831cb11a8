package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.vocdoni.io/dvote/log"

	"github.com/zoneid/mfa-backend/api"
	"github.com/zoneid/mfa-backend/db"
)

func main() {
	log.Init("debug", "stdout", nil)
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("secret", "s", "", "API secret")
	flag.String("mongo-url", "", "The URL of the MongoDB server")
	flag.String("mongo-db", "mfa-backend", "The name of the MongoDB database")
	flag.String("default-zone-name", "uaa", "display name of the default identity zone")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("MFA")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	secret := viper.GetString("secret")
	if secret == "" {
		log.Fatal("secret is required")
	}
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	defaultZoneName := viper.GetString("default-zone-name")
	// initialize the MongoDB database
	database, err := db.New(mongoURL, mongoDB)
	if err != nil {
		log.Fatalf("could not create the MongoDB database: %v", err)
	}
	defer database.Close()
	// ensure the default identity zone exists, so that requests without a
	// zone header or a zone subdomain have somewhere to land
	if _, err := database.IdentityZone(db.DefaultZoneID); err == db.ErrNotFound {
		if err := database.SetIdentityZone(&db.IdentityZone{
			ID:      db.DefaultZoneID,
			Name:    defaultZoneName,
			Active:  true,
			Created: time.Now(),
		}); err != nil {
			log.Fatalf("could not create the default identity zone: %v", err)
		}
		log.Infow("default identity zone created", "id", db.DefaultZoneID)
	} else if err != nil {
		log.Fatalf("could not read the default identity zone: %v", err)
	}
	// create the local API server
	api.New(&api.Config{
		Host:   host,
		Port:   port,
		Secret: secret,
		DB:     database,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
