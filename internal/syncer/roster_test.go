package syncer_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"clubsync/internal/syncer"
)

func TestLoadRoster(t *testing.T) {
	Convey("Given a roster file path", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "clubs.json")

		Convey("When the file holds name/url pairs", func() {
			So(os.WriteFile(path, []byte(`[
				{"name": "Chess Club", "url": "https://feeds.test/chess.ics"},
				{"name": "Robotics", "url": "https://feeds.test/robotics.ics"}
			]`), 0o600), ShouldBeNil)

			roster, err := syncer.LoadRoster(path)

			Convey("Then every pair is loaded in file order", func() {
				So(err, ShouldBeNil)
				So(roster, ShouldHaveLength, 2)
				So(roster[0].Name, ShouldEqual, "Chess Club")
				So(roster[1].URL, ShouldEqual, "https://feeds.test/robotics.ics")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := syncer.LoadRoster(filepath.Join(dir, "missing.json"))

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the path is empty", func() {
			_, err := syncer.LoadRoster("")

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the file is not valid JSON", func() {
			So(os.WriteFile(path, []byte("not json"), 0o600), ShouldBeNil)
			_, err := syncer.LoadRoster(path)

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
