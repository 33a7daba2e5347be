package sched

import (
	"context"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStart(t *testing.T) {
	Convey("Given scheduler settings", t, func() {
		noop := func(context.Context) {}

		Convey("When the schedule and timezone are valid", func() {
			s, err := Start("*/14 * * * *", "America/Los_Angeles", noop)

			Convey("Then the scheduler starts and stops cleanly", func() {
				So(err, ShouldBeNil)
				So(s, ShouldNotBeNil)
				s.Stop()
			})
		})

		Convey("When the timezone is not a real IANA name", func() {
			s, err := Start("*/14 * * * *", "Mars/Olympus_Mons", noop)

			Convey("Then starting fails", func() {
				So(err, ShouldNotBeNil)
				So(s, ShouldBeNil)
			})
		})

		Convey("When the cron expression is malformed", func() {
			s, err := Start("every 14 minutes or so", "UTC", noop)

			Convey("Then starting fails", func() {
				So(err, ShouldNotBeNil)
				So(s, ShouldBeNil)
			})
		})
	})
}

func TestOverlapGuard(t *testing.T) {
	Convey("Given a job that is still running when the next trigger fires", t, func() {
		s := &Scheduler{}

		started := make(chan struct{})
		release := make(chan struct{})
		var runs int
		var mu sync.Mutex

		job := func(context.Context) {
			mu.Lock()
			runs++
			mu.Unlock()
			close(started)
			<-release
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.run(job)
		}()
		<-started

		Convey("When a second trigger arrives mid-run", func() {
			s.run(job)

			Convey("Then it is skipped rather than overlapping", func() {
				mu.Lock()
				So(runs, ShouldEqual, 1)
				mu.Unlock()

				close(release)
				wg.Wait()
			})

			Convey("And the next trigger after completion runs again", func() {
				close(release)
				wg.Wait()

				done := make(chan struct{})
				s.run(func(context.Context) { close(done) })
				<-done

				mu.Lock()
				So(runs, ShouldEqual, 1)
				mu.Unlock()
			})
		})
	})
}
