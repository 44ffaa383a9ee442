package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nkmwicz/soccer-video-analysis/pkg/api"
	"github.com/nkmwicz/soccer-video-analysis/pkg/pipeline"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	_ = godotenv.Load() // .env is optional

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		logrus.Fatalf("Error: Could not read config file, got '%v'", err)
	}

	viper.SetDefault("directory.videos", "videos")
	viper.SetDefault("directory.data", "data")
	viper.SetDefault("http.port", "8080")

	//create missing directories from config file
	for _, dir := range []string{viper.GetString("directory.videos"), viper.GetString("directory.data")} {
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0766); err != nil {
					logrus.Errorf("Error Creating '%s' directory, got '%v'", dir, err)
				}
			}
		}
	}

	if viper.GetString("tracker.script") == "" {
		logrus.Fatalf("Error: Missing critical configurations")
	}

	//process any videos waiting in the videos directory, then serve the API
	if viper.GetBool("pipeline.autorun") {
		go func() {
			if err := pipeline.Run(); err != nil {
				logrus.Errorf("pipeline: Error, got '%v'", err)
			}
		}()
	}

	r := api.SetRouter()
	if err := r.Run(":" + viper.GetString("http.port")); err != nil {
		logrus.Fatalf("Error: Got '%v'", err)
	}
}
