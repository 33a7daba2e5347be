package cache_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"clubsync/internal/cache"
)

func TestCache(t *testing.T) {
	Convey("Given a response cache", t, func() {
		Convey("When a value is set", func() {
			c := cache.New(time.Minute)
			c.Set(cache.KeyEventsAll, []string{"a", "b"})

			Convey("Then it is returned until invalidated", func() {
				So(c.Get(cache.KeyEventsAll), ShouldResemble, []string{"a", "b"})
				So(c.Get(cache.KeyClubsAll), ShouldBeNil)
			})
		})

		Convey("When the TTL has passed", func() {
			c := cache.New(time.Nanosecond)
			c.Set(cache.KeyEventsAll, "stale")
			time.Sleep(5 * time.Millisecond)

			Convey("Then the entry reads as a miss", func() {
				So(c.Get(cache.KeyEventsAll), ShouldBeNil)
			})
		})

		Convey("When one key is invalidated", func() {
			c := cache.New(time.Minute)
			c.Set(cache.KeyEventsAll, "events")
			c.Set(cache.KeyClubsAll, "clubs")
			c.Invalidate(cache.KeyEventsAll)

			Convey("Then only that key is dropped", func() {
				So(c.Get(cache.KeyEventsAll), ShouldBeNil)
				So(c.Get(cache.KeyClubsAll), ShouldEqual, "clubs")
			})
		})

		Convey("When everything is invalidated", func() {
			c := cache.New(time.Minute)
			c.Set(cache.KeyEventsAll, "events")
			c.Set(cache.KeyClubsAll, "clubs")
			c.InvalidateAll()

			Convey("Then every key is dropped", func() {
				So(c.Get(cache.KeyEventsAll), ShouldBeNil)
				So(c.Get(cache.KeyClubsAll), ShouldBeNil)
			})
		})

		Convey("When constructed with a non-positive TTL", func() {
			c := cache.New(0)
			c.Set("k", "v")

			Convey("Then the fallback TTL keeps entries alive", func() {
				So(c.Get("k"), ShouldEqual, "v")
			})
		})
	})
}
