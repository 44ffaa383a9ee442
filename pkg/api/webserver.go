package api

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nkmwicz/soccer-video-analysis/pkg/pipeline"
	"github.com/nkmwicz/soccer-video-analysis/pkg/utils"
)

func SetRouter() *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/SourceVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("directory.videos")); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/GamesNames", func(ctx *gin.Context) {
		names, err := utils.ListDir(viper.GetString("directory.data"))
		if err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		}
		games := make([]string, 0, len(names))
		for _, name := range names {
			if strings.HasSuffix(name, ".csv") {
				games = append(games, strings.TrimSuffix(name, ".csv"))
			}
		}
		ctx.JSON(http.StatusOK, games)
	})

	apiRoutes.GET("/Events", func(ctx *gin.Context) {
		game := ctx.Request.URL.Query().Get("game")
		if game == "" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		csvPath := path.Join(viper.GetString("directory.data"), game+".csv")
		if _, err := os.Stat(csvPath); err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
			} else {
				ctx.Status(http.StatusInternalServerError)
			}
			return
		}

		ctx.Header("Content-Type", "text/csv")
		http.ServeFile(ctx.Writer, ctx.Request, csvPath)
	})

	apiRoutes.POST("/Analyze", func(ctx *gin.Context) {
		videoName := ctx.Request.URL.Query().Get("name")
		if videoName == "" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		videoPath := path.Join(viper.GetString("directory.videos"), videoName)
		if _, err := os.Stat(videoPath); err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.Status(http.StatusInternalServerError)
			return
		}

		go func() {
			if err := pipeline.ProcessVideo(videoPath); err != nil {
				logrus.Errorf("api/Analyze: Error, got '%v'", err)
			}
		}()
		ctx.Status(http.StatusAccepted)
	})

	apiRoutes.POST("/Upload", func(ctx *gin.Context) {
		file, err := ctx.FormFile("video")
		if err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		}

		existNames, err := utils.ListDir(viper.GetString("directory.videos"))
		if err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		}
		if utils.InSlice(file.Filename, existNames) {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		logrus.Infof("api/Upload: Received new file: name - '%s', size - %v Bytes", file.Filename, file.Size)

		videoPath := path.Join(viper.GetString("directory.videos"), file.Filename)
		if err := ctx.SaveUploadedFile(file, videoPath); err != nil {
			logrus.Errorf("api/Upload: Could not write '%s', got '%v'", videoPath, err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		go func() {
			if err := pipeline.ProcessVideo(videoPath); err != nil {
				logrus.Errorf("api/Upload: Error, got '%v'", err)
			}
		}()
		ctx.Status(http.StatusAccepted)
	})

	return r
}
