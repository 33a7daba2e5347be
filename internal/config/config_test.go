package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"clubsync/internal/config"
)

func TestLoad(t *testing.T) {
	Convey("Given a config path", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "sub", "config.yaml")

		Convey("When the file does not exist yet", func() {
			cfg, err := config.Load(path)

			Convey("Then defaults are returned and written to disk", func() {
				So(err, ShouldBeNil)
				So(cfg.Listen, ShouldEqual, "127.0.0.1:4000")
				So(cfg.Timezone, ShouldEqual, "America/Los_Angeles")
				So(cfg.SyncCron, ShouldEqual, "*/14 * * * *")
				So(cfg.FeedTimeoutSeconds, ShouldEqual, 15)
				So(cfg.CacheTTLSeconds, ShouldEqual, 120)
				So(cfg.HorizonDays, ShouldEqual, 90)

				info, serr := os.Stat(path)
				So(serr, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
			})
		})

		Convey("When the file exists but is only partially filled", func() {
			So(os.MkdirAll(filepath.Dir(path), 0o700), ShouldBeNil)
			So(os.WriteFile(path, []byte("listen: 0.0.0.0:8080\nhorizon_days: 30\n"), 0o600), ShouldBeNil)

			cfg, err := config.Load(path)

			Convey("Then explicit values stick and the rest normalize", func() {
				So(err, ShouldBeNil)
				So(cfg.Listen, ShouldEqual, "0.0.0.0:8080")
				So(cfg.HorizonDays, ShouldEqual, 30)
				So(cfg.SyncCron, ShouldEqual, "*/14 * * * *")
				So(cfg.FeedTimeoutSeconds, ShouldEqual, 15)
			})
		})

		Convey("When the file is not valid YAML", func() {
			So(os.MkdirAll(filepath.Dir(path), 0o700), ShouldBeNil)
			So(os.WriteFile(path, []byte("{not yaml"), 0o600), ShouldBeNil)

			_, err := config.Load(path)

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the path is empty", func() {
			_, err := config.Load("")

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestSave(t *testing.T) {
	Convey("Given a config to persist", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")

		Convey("When it is saved and loaded back", func() {
			in := config.DefaultConfig()
			in.Listen = "127.0.0.1:9999"
			in.RosterFile = "/etc/clubsync/clubs.json"
			So(config.Save(path, in), ShouldBeNil)

			out, err := config.Load(path)

			Convey("Then the round trip preserves every field", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, in)
			})
		})

		Convey("When the config is nil", func() {
			Convey("Then saving fails", func() {
				So(config.Save(path, nil), ShouldNotBeNil)
			})
		})
	})
}
